// dephealth.go - интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Порталы мониторят:
//   - PostgreSQL - SQL checker через существующий pgxpool (connection pool mode, critical)
//   - Google JWKS - HTTP checker (только если включён вход через Google, non-critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health - состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds - задержка проверки
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для Google JWKS
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"     // PostgreSQL checker (pool mode)
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthConfig - параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID - имя вершины графа (admin-portal, user-portal)
	ServiceID string
	// Group - имя группы в метриках (GM_DEPHEALTH_GROUP)
	Group string
	// DB - *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool()
	DB *sql.DB
	// PostgresURL - URL PostgreSQL без пароля (только для лейблов)
	PostgresURL string
	// GoogleJWKSURL - JWKS endpoint Google. Пустой - зависимость не мониторится.
	GoogleJWKSURL string
	// CheckInterval - интервал проверки (GM_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
	// Registerer - Prometheus registerer. nil - глобальный.
	Registerer prometheus.Registerer
}

// DephealthService - сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		// PostgreSQL - connection pool mode через существующий pgxpool.
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.PostgresURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}
	deps := []string{"postgresql"}

	if cfg.GoogleJWKSURL != "" {
		opts = append(opts, dephealth.HTTP("google-jwks",
			dephealth.FromURL(cfg.GoogleJWKSURL),
			dephealth.WithHTTPHealthPath(healthPathFromURL(cfg.GoogleJWKSURL)),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(false),
		))
		deps = append(deps, "google-jwks")
	}
	if cfg.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(cfg.Registerer))
	}

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// healthPathFromURL извлекает path из URL для HTTP checker.
// У Google нет /health, поэтому проверяется сам JWKS endpoint.
func healthPathFromURL(raw string) string {
	if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/health"
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен", slog.Any("dependencies", ds.deps))
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ - имя зависимости, значение - true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady реализует handlers.ReadinessChecker по последним результатам проверок.
// Недоступная зависимость даёт "degraded": PostgreSQL проверяется отдельно.
func (ds *DephealthService) CheckReady() (string, string) {
	var failed []string
	for name, ok := range ds.dh.Health() {
		if !ok {
			failed = append(failed, name)
		}
	}
	if len(failed) == 0 {
		return "ok", "все зависимости доступны"
	}
	sort.Strings(failed)
	return "degraded", "недоступны: " + strings.Join(failed, ", ")
}
