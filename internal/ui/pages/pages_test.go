package pages

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/domain/status"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := i18n.LoadFromEmbedFS(i18n.Init(logger), logger); err != nil {
		logger.Error("загрузка каталогов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// renderString рендерит компонент в строку.
func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("ошибка рендеринга: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(html, p) {
			t.Errorf("страница не содержит %q", p)
		}
	}
}

// TestAllTemplatesParsed проверяет, что каждая страница разобрана.
func TestAllTemplatesParsed(t *testing.T) {
	for name, tmpl := range templates {
		if tmpl.Lookup("content") == nil {
			t.Errorf("шаблон %s не определяет content", name)
		}
	}
}

// TestLoginPage проверяет страницу входа с ошибкой и кнопкой Google.
func TestLoginPage(t *testing.T) {
	html := renderString(t, Login(LoginData{
		Base:          Base{Title: "title.login", Lang: "es", Admin: true},
		Email:         "admin@gamy.com",
		Error:         "Usuario o contraseña incorrectos",
		GoogleEnabled: true,
	}))

	assertContains(t, html,
		"<title>Iniciar sesión · Gamy</title>",
		`action="/login"`,
		`value="admin@gamy.com"`,
		"Usuario o contraseña incorrectos",
		`href="/auth/google"`,
	)
	if strings.Contains(html, `href="/logout"`) {
		t.Error("на странице входа не должно быть ссылки выхода")
	}
}

// TestLoginPageWithoutGoogle проверяет скрытие входа через Google.
func TestLoginPageWithoutGoogle(t *testing.T) {
	html := renderString(t, Login(LoginData{Base: Base{Title: "title.login", Lang: "en", Admin: true}}))
	if strings.Contains(html, "/auth/google") {
		t.Error("кнопка Google должна быть скрыта")
	}
	assertContains(t, html, "Administrator access")
}

// TestStopReportPage проверяет карточку отчёта с кнопкой следующего статуса.
func TestStopReportPage(t *testing.T) {
	report := &model.StopReport{
		ID:        7,
		Location:  "19.43,-99.13",
		Comment:   "Techo roto <script>",
		Status:    status.Enviado,
		HasImage:  true,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	html := renderString(t, StopReport(StopReportData{
		Base:      Base{Title: "title.stop_report", Lang: "es", Admin: true, Email: "admin@gamy.com"},
		Report:    report,
		Latitude:  19.43,
		Longitude: -99.13,
		Next:      string(status.Pendiente),
	}))

	assertContains(t, html,
		"19.43", "-99.13",
		"Techo roto &lt;script&gt;",
		`src="/reportes/7/image"`,
		`data-url="/actualizarEstatusParadero/7"`,
		`data-estatus="Pendiente"`,
		`class="status enviado"`,
		`href="/logout"`,
	)
}

// TestStopReportPageTerminal проверяет отсутствие кнопки для Resuelto.
func TestStopReportPageTerminal(t *testing.T) {
	html := renderString(t, StopReport(StopReportData{
		Base:   Base{Title: "title.stop_report", Lang: "es", Admin: true, Email: "a@b.c"},
		Report: &model.StopReport{ID: 1, Status: status.Resuelto},
	}))
	if strings.Contains(html, "js-estatus") {
		t.Error("для Resuelto не должно быть кнопки смены статуса")
	}
}

// TestStopReportsFilter проверяет выбранный фильтр статуса.
func TestStopReportsFilter(t *testing.T) {
	html := renderString(t, StopReports(StopReportsData{
		Base:     Base{Title: "title.stop_reports", Lang: "es", Admin: true, Email: "a@b.c"},
		Reports:  []*model.StopReport{{ID: 3, Location: "1,2", Comment: "c", Status: status.Pendiente}},
		Filter:   "Pendiente",
		Statuses: status.All(),
		Action:   "/reporteParadas",
	}))

	assertContains(t, html,
		`action="/reporteParadas"`,
		`<option value="Pendiente" selected>`,
		`href="/ver-reporte/3"`,
		`action="/eliminar-reporte/3"`,
	)
}

// TestBusUnitsPage проверяет группировку по единицам.
func TestBusUnitsPage(t *testing.T) {
	html := renderString(t, BusUnits(BusUnitsData{
		Base: Base{Title: "title.bus_units", Lang: "es", Admin: true, Email: "a@b.c"},
		Units: []*model.BusUnitSummary{
			{Unit: "U-12", ReportCount: 3, LastReported: time.Now()},
		},
	}))
	assertContains(t, html, "U-12", `href="/reportes/unidad/U-12"`, "<td>3</td>")
}

// TestNewsFormModes проверяет форму публикации и редактирования.
func TestNewsFormModes(t *testing.T) {
	create := renderString(t, NewsForm(NewsFormData{Base: Base{Title: "title.news_form", Lang: "es", Admin: true, Email: "a@b.c"}}))
	assertContains(t, create, `action="/publicar"`, `name="imagen"`)

	edit := renderString(t, NewsForm(NewsFormData{
		Base:  Base{Title: "title.news_form", Lang: "es", Admin: true, Email: "a@b.c"},
		Post:  &model.NewsPost{ID: 4, Title: "Aviso", HasImage: true},
		Title: "Aviso",
		Body:  "Texto",
	}))
	assertContains(t, edit, `action="/editarNoticia/4"`, `value="Aviso"`, "Texto")
	if strings.Contains(edit, `name="imagen"`) {
		t.Error("форма редактирования не должна запрашивать изображение")
	}
}

// TestAdminsPageHidesSelfDelete проверяет, что нельзя удалить себя.
func TestAdminsPageHidesSelfDelete(t *testing.T) {
	html := renderString(t, Admins(AdminsData{
		Base: Base{Title: "title.admins", Lang: "es", Admin: true, Email: "a@gamy.com"},
		Admins: []*model.AdminUser{
			{ID: 1, Email: "a@gamy.com"},
			{ID: 2, Email: "b@gamy.com"},
		},
		CurrentID: 1,
	}))
	if strings.Contains(html, `action="/eliminarUsuario/1"`) {
		t.Error("удаление текущего администратора должно быть скрыто")
	}
	assertContains(t, html, `action="/eliminarUsuario/2"`, `href="/editarUsuario/1"`)
}

// TestMyReportsPage проверяет порядок: сначала остановки, затем автобусы.
func TestMyReportsPage(t *testing.T) {
	html := renderString(t, MyReports(MyReportsData{
		Base:  Base{Title: "title.my_reports", Lang: "es", Name: "Ana"},
		Stops: []*model.StopReport{{ID: 1, Location: "19.43,-99.13", Status: status.Enviado, HasImage: true}},
		Buses: []*model.BusReport{{ID: 2, Unit: "U-1", Route: "R4", Status: "Enviado", HasPhoto: true}},
	}))

	stop := strings.Index(html, "/mis-reportes/paradero/1/image")
	bus := strings.Index(html, "/mis-reportes/camion/2/image")
	if stop < 0 || bus < 0 {
		t.Fatal("изображения отчётов не найдены")
	}
	if stop > bus {
		t.Error("отчёты об остановках должны идти перед отчётами об автобусах")
	}
	assertContains(t, html, `href="/misReportes"`, "Ana")
}

// TestLandingPage проверяет стартовую страницу пользователя.
func TestLandingPage(t *testing.T) {
	html := renderString(t, Landing(LandingData{Base: Base{Title: "title.landing", Lang: "es"}}))
	assertContains(t, html, `href="/auth/google"`, "Iniciar sesión con Google")
	if strings.Contains(html, `href="/logout"`) {
		t.Error("публичная страница не должна содержать навигацию")
	}
}

// TestNoticeRendered проверяет вывод уведомления.
func TestNoticeRendered(t *testing.T) {
	html := renderString(t, StopForm(StopFormData{
		Base: Base{Title: "title.stop_form", Lang: "es", Name: "Ana", Notice: "notice.stop_sent"},
	}))
	assertContains(t, html, "Reporte de paradero enviado.", `action="/reportParadero"`)
}

// TestErrorPage проверяет страницу ошибки.
func TestErrorPage(t *testing.T) {
	html := renderString(t, Error(ErrorData{
		Base:    Base{Title: "title.error", Lang: "es"},
		Status:  404,
		Message: "No encontrado",
	}))
	assertContains(t, html, "<h1>404</h1>", "No encontrado")
}

// TestLayout проверяет каркас страницы: навигацию по порталу, язык и экранирование.
func TestLayout(t *testing.T) {
	body := templ.Raw("<p>cuerpo</p>")

	t.Run("администратор", func(t *testing.T) {
		html := renderString(t, Layout(Base{Title: "title.home", Lang: "en", Admin: true, Email: "a@gamy.com", Notice: "notice.saved"}, body))
		assertContains(t, html,
			`<html lang="en">`,
			`href="/home">Gamy</a>`,
			`href="/usuarios"`,
			`<span class="who">a@gamy.com</span>`,
			`value="en" disabled`,
			`class="notice"`,
			"<main>",
			"<p>cuerpo</p></main>",
		)
		if strings.Contains(html, `href="/misReportes"`) {
			t.Error("навигация пользователя на странице администратора")
		}
	})

	t.Run("пользователь", func(t *testing.T) {
		html := renderString(t, Layout(Base{Title: "title.landing", Lang: "es", Name: "<Ana>"}, body))
		assertContains(t, html,
			`href="/index">Gamy</a>`,
			`href="/misReportes"`,
			"&lt;Ana&gt;",
			`value="es" disabled`,
		)
		if strings.Contains(html, "<Ana>") {
			t.Error("имя не экранировано")
		}
		if strings.Contains(html, `class="notice"`) {
			t.Error("уведомление без Notice")
		}
	})

	t.Run("без сессии", func(t *testing.T) {
		html := renderString(t, Layout(Base{Title: "title.login", Lang: "es"}, body))
		if strings.Contains(html, "<nav>") {
			t.Error("навигация без сессии")
		}
	})
}
