// Пакет config - загрузка и валидация конфигурации Gamy
// (admin-portal, user-portal, gamyctl) из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// App - какое приложение загружает конфигурацию.
// От него зависят порт по умолчанию и обязательность Google OAuth.
type App string

const (
	// AppAdmin - портал администраторов.
	AppAdmin App = "admin"
	// AppUser - портал пользователей (Google OAuth обязателен).
	AppUser App = "user"
	// AppCLI - gamyctl (без HTTP и OAuth).
	AppCLI App = "cli"
)

// Значения по умолчанию для Google OAuth endpoints.
const (
	DefaultGoogleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	DefaultGoogleTokenURL = "https://oauth2.googleapis.com/token"
	DefaultGoogleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"
)

// Config содержит все параметры конфигурации Gamy.
type Config struct {
	// App - приложение, для которого загружена конфигурация.
	App App

	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Максимальный размер multipart-формы с изображением (байт)
	MaxUploadBytes int64

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Сессии ---

	// Секрет cookie-сессий (пустой - случайный ключ на время жизни процесса)
	SessionSecret string
	// Таймаут неактивности сессии, продлевается при каждом запросе
	SessionIdleTimeout time.Duration
	// Secure flag для cookie (true за HTTPS)
	SecureCookie bool

	// --- Google OAuth ---

	GoogleClientID     string
	GoogleClientSecret string
	// Полный callback URL. Пустой - вычисляется из запроса.
	GoogleRedirectURL string
	GoogleAuthURL     string
	GoogleTokenURL    string
	GoogleJWKSURL     string
	// Вход администраторов через Google (только admin-portal)
	AdminGoogleEnabled bool

	// --- Начальный администратор ---

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// --- Кэш изображений ---

	ImageCacheSize int
	ImageCacheTTL  time.Duration

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию приложения app из переменных окружения,
// валидирует обязательные поля и возвращает Config или ошибку.
func Load(app App) (*Config, error) {
	cfg := &Config{App: app}
	var err error

	// --- Сервер ---

	// GM_PORT - порт HTTP-сервера (4001 для admin, 4000 для user)
	cfg.Port, err = getEnvInt("GM_PORT", defaultPort(app))
	if err != nil {
		return nil, fmt.Errorf("GM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("GM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("GM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("GM_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("GM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("GM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	maxUpload, err := getEnvInt("GM_MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("GM_MAX_UPLOAD_BYTES: %w", err)
	}
	if maxUpload < 1024 {
		return nil, fmt.Errorf("GM_MAX_UPLOAD_BYTES: значение %d меньше минимума 1024", maxUpload)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("GM_DB_HOST"); err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("GM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("GM_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("GM_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("GM_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("GM_DB_PASSWORD"); err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("GM_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("GM_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Сессии ---

	cfg.SessionSecret = getEnvDefault("GM_SESSION_SECRET", "")
	cfg.SessionIdleTimeout, err = getEnvDuration("GM_SESSION_IDLE_TIMEOUT", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("GM_SESSION_IDLE_TIMEOUT: %w", err)
	}
	if cfg.SessionIdleTimeout < time.Minute {
		return nil, fmt.Errorf("GM_SESSION_IDLE_TIMEOUT: значение %s меньше минимума 1m", cfg.SessionIdleTimeout)
	}
	cfg.SecureCookie, err = getEnvBool("GM_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("GM_SECURE_COOKIE: %w", err)
	}

	// --- Google OAuth ---

	cfg.AdminGoogleEnabled, err = getEnvBool("GM_ADMIN_GOOGLE_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("GM_ADMIN_GOOGLE_ENABLED: %w", err)
	}

	if cfg.GoogleRequired() {
		if cfg.GoogleClientID, err = getEnvRequired("GM_GOOGLE_CLIENT_ID"); err != nil {
			return nil, err
		}
		if cfg.GoogleClientSecret, err = getEnvRequired("GM_GOOGLE_CLIENT_SECRET"); err != nil {
			return nil, err
		}
	}
	cfg.GoogleRedirectURL = getEnvDefault("GM_GOOGLE_REDIRECT_URL", "")
	cfg.GoogleAuthURL = getEnvDefault("GM_GOOGLE_AUTH_URL", DefaultGoogleAuthURL)
	cfg.GoogleTokenURL = getEnvDefault("GM_GOOGLE_TOKEN_URL", DefaultGoogleTokenURL)
	cfg.GoogleJWKSURL = getEnvDefault("GM_GOOGLE_JWKS_URL", DefaultGoogleJWKSURL)

	// --- Начальный администратор ---

	cfg.BootstrapAdminEmail = strings.ToLower(strings.TrimSpace(getEnvDefault("GM_BOOTSTRAP_ADMIN_EMAIL", "admin@gamy.com")))
	cfg.BootstrapAdminPassword = getEnvDefault("GM_BOOTSTRAP_ADMIN_PASSWORD", "")

	// --- Кэш изображений ---

	cfg.ImageCacheSize, err = getEnvInt("GM_IMAGE_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("GM_IMAGE_CACHE_SIZE: %w", err)
	}
	if cfg.ImageCacheSize < 1 {
		return nil, fmt.Errorf("GM_IMAGE_CACHE_SIZE: значение %d должно быть положительным", cfg.ImageCacheSize)
	}
	cfg.ImageCacheTTL, err = getEnvDuration("GM_IMAGE_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("GM_IMAGE_CACHE_TTL: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("GM_DEPHEALTH_GROUP", "gamy")
	cfg.DephealthCheckInterval, err = getEnvDuration("GM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("GM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("GM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// GoogleRequired сообщает, нужен ли приложению Google OAuth.
func (c *Config) GoogleRequired() bool {
	switch c.App {
	case AppUser:
		return true
	case AppAdmin:
		return c.AdminGoogleEnabled
	default:
		return false
	}
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов метрик).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
}

// ServiceName - имя сервиса для health endpoints и topologymetrics.
func (c *Config) ServiceName() string {
	switch c.App {
	case AppAdmin:
		return "admin-portal"
	case AppUser:
		return "user-portal"
	default:
		return "gamyctl"
	}
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(slog.String("service", cfg.ServiceName()))
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

func defaultPort(app App) int {
	if app == AppUser {
		return 4000
	}
	return 4001
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
