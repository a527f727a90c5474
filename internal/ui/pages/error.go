package pages

import "github.com/a-h/templ"

// ErrorData - страница ошибки.
type ErrorData struct {
	Base
	Status  int
	Message string
}

// Error - страница ошибки для HTML-маршрутов.
func Error(data ErrorData) templ.Component { return render("error", data.Base, data) }
