// errors.go - ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/gamy-transporte/reportes/internal/repository"
)

var (
	// ErrAuthFailure - неверный email или пароль, либо доступ не разрешён.
	ErrAuthFailure = errors.New("ошибка аутентификации")
	// ErrNotFound - ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrInvalidTransition - недопустимый переход статуса отчёта.
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	// ErrMalformedRequest - некорректные входные данные.
	ErrMalformedRequest = errors.New("некорректный запрос")
	// ErrStorage - ошибка хранилища.
	ErrStorage = errors.New("ошибка хранилища")
	// ErrConflict - конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт - ресурс уже существует")
)

// ValidationError - ошибка входных данных с сообщением для пользователя.
// errors.Is(err, ErrMalformedRequest) == true.
type ValidationError struct {
	// Message - текст для пользователя (на испанском)
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedRequest, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedRequest
}

// invalid создаёт ValidationError с форматированным сообщением.
func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UserMessage возвращает сообщение для пользователя из ValidationError
// или fallback для остальных ошибок.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fallback
}

// repoError переводит ошибку репозитория в ошибку сервисного слоя.
// Всё, кроме ErrNotFound и ErrConflict, становится ErrStorage.
func repoError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}
}
