// Gamy admin-portal - портал администраторов: триаж отчётов об остановках
// и автобусах, новости, учётные записи администраторов.
//
// Точка входа: загрузка конфигурации, миграции, сборка сервисов,
// создание начального администратора и запуск HTTP-сервера.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gamy-transporte/reportes/internal/app"
	"github.com/gamy-transporte/reportes/internal/config"
	"github.com/gamy-transporte/reportes/internal/domain/access"
	"github.com/gamy-transporte/reportes/internal/server"
	uihandlers "github.com/gamy-transporte/reportes/internal/ui/handlers"
)

func main() {
	// 1. Загрузка конфигурации
	cfg, err := config.Load(config.AppAdmin)
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Логгер
	logger := config.SetupLogger(cfg)
	logger.Info("admin-portal запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Миграции, PostgreSQL, сервисы
	ctx := context.Background()
	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rt.Close()

	// 4. Начальный администратор из конфигурации
	if _, err := rt.Credentials.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		logger.Error("Ошибка создания начального администратора", slog.String("error", err.Error()))
		rt.Close()
		os.Exit(1)
	}

	// 5. Обработчики
	var google uihandlers.GoogleLogin
	if cfg.AdminGoogleEnabled && rt.Google != nil {
		google = rt.Google
	}

	router := server.NewAdminRouter(server.AdminComponents{
		Health:        rt.Health,
		Gate:          rt.Gate,
		Auth:          uihandlers.NewAuthHandler(access.RoleAdmin, rt.Sessions, rt.Credentials, google, cfg.GoogleRedirectURL, logger),
		GoogleEnabled: google != nil,
		Admins:        uihandlers.NewAdminsHandler(rt.Credentials, logger),
		Stops:         uihandlers.NewStopReportsHandler(rt.StopReports, logger),
		Buses:         uihandlers.NewBusReportsHandler(rt.BusReports, logger),
		News:          uihandlers.NewNewsHandler(rt.News, cfg.MaxUploadBytes, logger),
	}, logger)

	logger.Info("Портал администратора инициализирован",
		slog.Bool("google_login", google != nil),
		slog.Bool("secure_cookie", cfg.SecureCookie),
	)

	// 6. HTTP-сервер с graceful shutdown
	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		rt.Close()
		os.Exit(1)
	}

	logger.Info("admin-portal остановлен")
}
