// Пакет app - общая сборка зависимостей порталов: миграции, пул PostgreSQL,
// репозитории, сервисы, сессии, вход через Google, health и topologymetrics.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gamy-transporte/reportes/internal/api/handlers"
	"github.com/gamy-transporte/reportes/internal/config"
	"github.com/gamy-transporte/reportes/internal/database"
	"github.com/gamy-transporte/reportes/internal/repository"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/auth"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
	uimiddleware "github.com/gamy-transporte/reportes/internal/ui/middleware"
)

// Runtime - зависимости, общие для обоих порталов.
type Runtime struct {
	Pool        *pgxpool.Pool
	Credentials *service.CredentialService
	StopReports *service.StopReportService
	BusReports  *service.BusReportService
	News        *service.NewsService
	MyReports   *service.MyReportsService
	Sessions    *auth.SessionManager
	Gate        *uimiddleware.Gate
	// Google - nil, если вход через Google не нужен приложению
	Google *auth.GoogleClient
	Health *handlers.HealthHandler

	db        *sql.DB
	dephealth *service.DephealthService
	logger    *slog.Logger
}

// Build применяет миграции, подключается к PostgreSQL и собирает сервисы.
// Вызывающий обязан вызвать Close.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		return nil, fmt.Errorf("загрузка переводов: %w", err)
	}

	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return nil, fmt.Errorf("миграции БД: %w", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
	}

	rt := &Runtime{
		Pool:   pool,
		db:     stdlib.OpenDBFromPool(pool),
		logger: logger,
	}

	// Репозитории и сервисы
	images := service.NewImageCache(cfg.ImageCacheSize, cfg.ImageCacheTTL)
	rt.Credentials = service.NewCredentialService(
		repository.NewAdminUserRepository(pool),
		repository.NewEndUserRepository(pool),
		logger,
	)
	rt.StopReports = service.NewStopReportService(repository.NewStopReportRepository(pool), images, logger)
	rt.BusReports = service.NewBusReportService(repository.NewBusReportRepository(pool), images, logger)
	rt.News = service.NewNewsService(repository.NewNewsRepository(pool), images, logger)
	rt.MyReports = service.NewMyReportsService(rt.StopReports, rt.BusReports)

	// Сессии
	if cfg.SessionSecret == "" {
		logger.Warn("GM_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}
	rt.Sessions, err = auth.NewSessionManager(cfg.SessionSecret, cfg.SessionIdleTimeout, cfg.SecureCookie)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("создание Session Manager: %w", err)
	}
	rt.Gate = uimiddleware.NewGate(rt.Sessions, rt.Credentials, logger)

	// Google OAuth
	if cfg.GoogleRequired() {
		rt.Google, err = auth.NewGoogleClient(ctx, auth.GoogleConfig{
			ClientID:            cfg.GoogleClientID,
			ClientSecret:        cfg.GoogleClientSecret,
			AuthURL:             cfg.GoogleAuthURL,
			TokenURL:            cfg.GoogleTokenURL,
			JWKSURL:             cfg.GoogleJWKSURL,
			Timeout:             30 * time.Second,
			JWKSRefreshInterval: time.Hour,
		}, logger)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("создание клиента Google: %w", err)
		}
		logger.Info("Вход через Google включён",
			slog.String("client_id", cfg.GoogleClientID),
			slog.String("redirect_url", cfg.GoogleRedirectURL),
		)
	}

	// topologymetrics
	jwksURL := ""
	if rt.Google != nil {
		jwksURL = cfg.GoogleJWKSURL
	}
	dephealthSvc, err := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     cfg.ServiceName(),
		Group:         cfg.DephealthGroup,
		DB:            rt.db,
		PostgresURL:   cfg.DatabaseURL(),
		GoogleJWKSURL: jwksURL,
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		rt.dephealth = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	checkers := map[string]handlers.ReadinessChecker{
		"postgresql": database.NewReadinessChecker(pool),
	}
	if rt.dephealth != nil {
		checkers["dependencies"] = rt.dephealth
	}
	rt.Health = handlers.NewHealthHandler(cfg.ServiceName(), checkers)

	return rt, nil
}

// Close останавливает фоновые задачи и закрывает соединения с БД.
func (rt *Runtime) Close() {
	if rt.dephealth != nil {
		rt.dephealth.Stop()
	}
	if rt.db != nil {
		_ = rt.db.Close()
	}
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}
