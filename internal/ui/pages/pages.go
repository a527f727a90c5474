// Пакет pages - HTML-страницы порталов.
// Каркас страницы - templ-компонент Layout; тело каждой страницы - встроенный
// html/template с блоком "content". Обработчики вызывают pages.X(data).Render(ctx, w).
package pages

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/gamy-transporte/reportes/internal/ui/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Base - общие данные layout. Title - ключ перевода заголовка страницы.
type Base struct {
	Title string
	Lang  string
	// Admin - страница портала администратора (навигация администратора)
	Admin bool
	// Email и Name - субъект сессии, пустые для публичных страниц
	Email string
	Name  string
	// Notice - ключ перевода уведомления об успешной операции
	Notice string
}

// T переводит ключ на язык страницы.
func (b Base) T(key string) string {
	return i18n.Translate(b.Lang, key)
}

// LoggedIn - есть ли субъект сессии.
func (b Base) LoggedIn() bool {
	return b.Email != "" || b.Name != ""
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02/01/2006 15:04")
	},
	"lower": func(v any) string {
		return strings.ToLower(fmt.Sprint(v))
	},
}

var templates = parseAll(
	"error",
	// Администратор
	"login", "home", "stop_reports", "stop_report", "bus_units", "bus_unit",
	"bus_report", "news_list", "news_form", "admins", "admin_form",
	// Пользователь
	"landing", "news_index", "stop_form", "bus_form", "my_reports",
)

// parseAll разбирает каждую страницу в отдельный набор шаблонов.
func parseAll(names ...string) map[string]*template.Template {
	set := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page := template.New(name + ".html").Funcs(funcs)
		set[name] = template.Must(page.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return set
}

func render(name string, b Base, data any) templ.Component {
	return Layout(b, templ.FromGoHTML(templates[name].Lookup("content"), data))
}
