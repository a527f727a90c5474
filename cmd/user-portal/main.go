// Gamy user-portal - портал пользователей: вход через Google, отправка
// отчётов об остановках и автобусах, новости, "Mis reportes".
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
	cfg, err := config.Load(config.AppUser)
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("user-portal запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	ctx := context.Background()
	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rt.Close()

	news := uihandlers.NewNewsHandler(rt.News, cfg.MaxUploadBytes, logger)
	router := server.NewUserRouter(server.UserComponents{
		Health: rt.Health,
		Gate:   rt.Gate,
		Auth:   uihandlers.NewAuthHandler(access.RoleUser, rt.Sessions, rt.Credentials, rt.Google, cfg.GoogleRedirectURL, logger),
		News:   news,
		Portal: uihandlers.NewPortalHandler(rt.StopReports, rt.BusReports, rt.MyReports, cfg.MaxUploadBytes, logger),
	}, logger)

	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		rt.Close()
		os.Exit(1)
	}

	logger.Info("user-portal остановлен")
}
