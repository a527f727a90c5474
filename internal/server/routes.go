// routes.go - маршруты порталов администратора и пользователя.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gamy-transporte/reportes/internal/api/handlers"
	"github.com/gamy-transporte/reportes/internal/api/middleware"
	uihandlers "github.com/gamy-transporte/reportes/internal/ui/handlers"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
	uimiddleware "github.com/gamy-transporte/reportes/internal/ui/middleware"
	"github.com/gamy-transporte/reportes/internal/ui/static"
)

// AdminComponents - обработчики портала администратора.
type AdminComponents struct {
	Health *handlers.HealthHandler
	Gate   *uimiddleware.Gate
	Auth   *uihandlers.AuthHandler
	// GoogleEnabled - регистрировать маршруты входа через Google
	GoogleEnabled bool
	Admins        *uihandlers.AdminsHandler
	Stops         *uihandlers.StopReportsHandler
	Buses         *uihandlers.BusReportsHandler
	News          *uihandlers.NewsHandler
}

// UserComponents - обработчики портала пользователя.
type UserComponents struct {
	Health *handlers.HealthHandler
	Gate   *uimiddleware.Gate
	Auth   *uihandlers.AuthHandler
	News   *uihandlers.NewsHandler
	Portal *uihandlers.PortalHandler
}

// newBaseRouter создаёт роутер с общими middleware и публичными маршрутами:
// health, metrics, статика, переключение языка.
func newBaseRouter(logger *slog.Logger, health *handlers.HealthHandler) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	// Health и metrics проверяются Kubernetes напрямую
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))
	router.Post("/set-language", uihandlers.HandleSetLanguage)

	return router
}

// NewAdminRouter собирает роутер портала администратора.
func NewAdminRouter(c AdminComponents, logger *slog.Logger) http.Handler {
	router := newBaseRouter(logger, c.Health)

	// Публичные маршруты
	router.Get("/", c.Auth.HandleLoginPage)
	router.Post("/login", c.Auth.HandleLogin)
	router.Get("/logout", c.Auth.HandleLogout)
	if c.GoogleEnabled {
		router.Get("/auth/google", c.Auth.HandleGoogleLogin)
		router.Get("/auth/google/callback", c.Auth.HandleGoogleCallback)
	}

	// JSON-эндпоинт: 401 вместо redirect
	router.With(c.Gate.RequireAdminJSON()).
		Post("/actualizarEstatusParadero/{id}", c.Stops.HandleUpdateStatus)

	router.Group(func(r chi.Router) {
		r.Use(c.Gate.RequireAdmin())

		r.Get("/home", c.Admins.HandleHome)

		// Отчёты об остановках
		r.Get("/view-reports", c.Stops.HandleList)
		r.Get("/reporteParadas", c.Stops.HandleList)
		r.Get("/ver-reporte/{id}", c.Stops.HandleDetail)
		r.Get("/reportes/{id}/image", c.Stops.HandleImage)
		r.Post("/eliminar-reporte/{id}", c.Stops.HandleDelete)

		// Отчёты об автобусах
		r.Get("/reporteCamiones", c.Buses.HandleUnits)
		r.Get("/reportes/unidad/{unidad}", c.Buses.HandleUnit)
		r.Get("/ver-reporte-camion/{id}", c.Buses.HandleDetail)
		r.Get("/imagen-reporte-camion/{id}", c.Buses.HandleImage)
		r.Post("/actualizarEstatus/{id}", c.Buses.HandleUpdateStatus)
		r.Post("/eliminar-reporte-camion/{id}", c.Buses.HandleDelete)

		// Новости
		r.Get("/noticias", c.News.HandleList)
		r.Get("/nuevaPubli", c.News.HandleNewForm)
		r.Post("/publicar", c.News.HandlePublish)
		r.Get("/editarNoticia/{id}", c.News.HandleEditForm)
		r.Post("/editarNoticia/{id}", c.News.HandleUpdate)
		r.Get("/eliminarNoticia/{id}", c.News.HandleDelete)
		r.Get("/imagen/{id}", c.News.HandleImage)

		// Администраторы
		r.Get("/usuarios", c.Admins.HandleList)
		r.Get("/altaUsuarios", c.Admins.HandleNewForm)
		r.Post("/altaUsuarios", c.Admins.HandleCreate)
		r.Get("/editarUsuario/{id}", c.Admins.HandleEditForm)
		r.Post("/editarUsuario/{id}", c.Admins.HandleUpdate)
		r.Post("/actualizarUsuario/{id}", c.Admins.HandleUpdate)
		r.Post("/eliminarUsuario/{id}", c.Admins.HandleDelete)
	})

	return router
}

// NewUserRouter собирает роутер портала пользователя.
func NewUserRouter(c UserComponents, logger *slog.Logger) http.Handler {
	router := newBaseRouter(logger, c.Health)

	// Публичные маршруты
	router.Get("/", c.Auth.HandleLanding)
	router.Get("/auth/google", c.Auth.HandleGoogleLogin)
	router.Get("/auth/google/callback", c.Auth.HandleGoogleCallback)
	router.Get("/logout", c.Auth.HandleLogout)
	router.Get("/imagen/{id}", c.News.HandleImage)

	router.Group(func(r chi.Router) {
		r.Use(c.Gate.RequireUser())

		r.Get("/index", c.News.HandleIndex)
		r.Get("/report", c.Portal.HandleStopForm)
		r.Post("/reportParadero", c.Portal.HandleSubmitStop)
		r.Get("/reporteCamion", c.Portal.HandleBusForm)
		r.Post("/guardar-reporte-camion", c.Portal.HandleSubmitBus)
		r.Get("/misReportes", c.Portal.HandleMyReports)
		r.Get("/mis-reportes/paradero/{id}/image", c.Portal.HandleStopImage)
		r.Get("/mis-reportes/camion/{id}/image", c.Portal.HandleBusImage)
	})

	return router
}
