// validate.go - валидация команд сервисного слоя через go-playground/validator.
package service

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator создаёт валидатор, который использует тег label
// как имя поля в сообщениях для пользователя.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// validateStruct проверяет структуру и возвращает ValidationError
// с сообщением о первом нарушенном правиле.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Message: fieldMessage(verrs[0])}
	}
	return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
}

// fieldMessage формирует текст ошибки поля для пользователя.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", field)
	case "email":
		return fmt.Sprintf("El campo %s debe ser un correo válido", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("El campo %s es obligatorio", field)
		}
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s no debe exceder %s caracteres", field, fe.Param())
	default:
		return fmt.Sprintf("El campo %s no es válido", field)
	}
}
