package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"GM_DB_HOST":     "localhost",
		"GM_DB_NAME":     "gamy",
		"GM_DB_USER":     "gamy",
		"GM_DB_PASSWORD": "secret",
	}
}

// googleEnvs дополняет minimalEnvs параметрами Google OAuth.
func googleEnvs() map[string]string {
	envs := minimalEnvs()
	envs["GM_GOOGLE_CLIENT_ID"] = "client-id.apps.googleusercontent.com"
	envs["GM_GOOGLE_CLIENT_SECRET"] = "google-secret"
	return envs
}

func TestLoad_MinimalAdminConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load(AppAdmin)
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 4001 {
		t.Errorf("Port = %d, ожидается 4001", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.SessionIdleTimeout != time.Hour {
		t.Errorf("SessionIdleTimeout = %v, ожидается 1h", cfg.SessionIdleTimeout)
	}
	if cfg.SecureCookie {
		t.Error("SecureCookie = true, ожидается false")
	}
	if cfg.AdminGoogleEnabled {
		t.Error("AdminGoogleEnabled = true, ожидается false")
	}
	if cfg.GoogleAuthURL != DefaultGoogleAuthURL {
		t.Errorf("GoogleAuthURL = %q, ожидается %q", cfg.GoogleAuthURL, DefaultGoogleAuthURL)
	}
	if cfg.GoogleJWKSURL != DefaultGoogleJWKSURL {
		t.Errorf("GoogleJWKSURL = %q, ожидается %q", cfg.GoogleJWKSURL, DefaultGoogleJWKSURL)
	}
	if cfg.BootstrapAdminEmail != "admin@gamy.com" {
		t.Errorf("BootstrapAdminEmail = %q, ожидается admin@gamy.com", cfg.BootstrapAdminEmail)
	}
	if cfg.BootstrapAdminPassword != "" {
		t.Error("BootstrapAdminPassword не должен иметь значения по умолчанию")
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, ожидается %d", cfg.MaxUploadBytes, 10<<20)
	}
	if cfg.ImageCacheSize != 256 {
		t.Errorf("ImageCacheSize = %d, ожидается 256", cfg.ImageCacheSize)
	}
	if cfg.ImageCacheTTL != 10*time.Minute {
		t.Errorf("ImageCacheTTL = %v, ожидается 10m", cfg.ImageCacheTTL)
	}
	if cfg.DephealthGroup != "gamy" {
		t.Errorf("DephealthGroup = %q, ожидается gamy", cfg.DephealthGroup)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 15s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
	if cfg.ServiceName() != "admin-portal" {
		t.Errorf("ServiceName() = %q, ожидается admin-portal", cfg.ServiceName())
	}
}

func TestLoad_UserConfig(t *testing.T) {
	setEnvs(t, googleEnvs())

	cfg, err := Load(AppUser)
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, ожидается 4000", cfg.Port)
	}
	if cfg.GoogleClientID != "client-id.apps.googleusercontent.com" {
		t.Errorf("GoogleClientID = %q", cfg.GoogleClientID)
	}
	if !cfg.GoogleRequired() {
		t.Error("GoogleRequired() = false для user-portal")
	}
	if cfg.ServiceName() != "user-portal" {
		t.Errorf("ServiceName() = %q, ожидается user-portal", cfg.ServiceName())
	}
}

func TestLoad_UserRequiresGoogle(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("GM_GOOGLE_CLIENT_ID", "")
	t.Setenv("GM_GOOGLE_CLIENT_SECRET", "")

	_, err := Load(AppUser)
	if err == nil {
		t.Fatal("Load(AppUser) не вернул ошибку без GM_GOOGLE_CLIENT_ID")
	}
}

func TestLoad_AdminGoogleEnabled(t *testing.T) {
	envs := minimalEnvs()
	envs["GM_ADMIN_GOOGLE_ENABLED"] = "true"
	setEnvs(t, envs)
	t.Setenv("GM_GOOGLE_CLIENT_ID", "")

	if _, err := Load(AppAdmin); err == nil {
		t.Error("Load(AppAdmin) не вернул ошибку при включённом Google без client id")
	}

	setEnvs(t, googleEnvs())
	cfg, err := Load(AppAdmin)
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if !cfg.GoogleRequired() {
		t.Error("GoogleRequired() = false при GM_ADMIN_GOOGLE_ENABLED=true")
	}
}

func TestLoad_CLIIgnoresGoogle(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("GM_ADMIN_GOOGLE_ENABLED", "true")

	cfg, err := Load(AppCLI)
	if err != nil {
		t.Fatalf("Load(AppCLI) вернул ошибку: %v", err)
	}
	if cfg.GoogleRequired() {
		t.Error("GoogleRequired() = true для gamyctl")
	}
}

func TestLoad_AllFieldsCustom(t *testing.T) {
	envs := googleEnvs()
	envs["GM_PORT"] = "9090"
	envs["GM_LOG_LEVEL"] = "debug"
	envs["GM_LOG_FORMAT"] = "text"
	envs["GM_DB_PORT"] = "5433"
	envs["GM_DB_SSL_MODE"] = "require"
	envs["GM_SESSION_SECRET"] = "super-secret"
	envs["GM_SESSION_IDLE_TIMEOUT"] = "30m"
	envs["GM_SECURE_COOKIE"] = "true"
	envs["GM_GOOGLE_REDIRECT_URL"] = "https://gamy.example.com/auth/google/callback"
	envs["GM_GOOGLE_AUTH_URL"] = "http://127.0.0.1:9999/auth"
	envs["GM_GOOGLE_TOKEN_URL"] = "http://127.0.0.1:9999/token"
	envs["GM_GOOGLE_JWKS_URL"] = "http://127.0.0.1:9999/certs"
	envs["GM_BOOTSTRAP_ADMIN_EMAIL"] = " Root@Gamy.com "
	envs["GM_BOOTSTRAP_ADMIN_PASSWORD"] = "changeme"
	envs["GM_MAX_UPLOAD_BYTES"] = "2048"
	envs["GM_IMAGE_CACHE_SIZE"] = "16"
	envs["GM_IMAGE_CACHE_TTL"] = "1m"
	envs["GM_DEPHEALTH_GROUP"] = "prod"
	envs["GM_DEPHEALTH_CHECK_INTERVAL"] = "30s"
	envs["GM_SHUTDOWN_TIMEOUT"] = "10s"
	setEnvs(t, envs)

	cfg, err := Load(AppUser)
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, ожидается 5433", cfg.DBPort)
	}
	if cfg.DBSSLMode != "require" {
		t.Errorf("DBSSLMode = %q, ожидается require", cfg.DBSSLMode)
	}
	if cfg.SessionSecret != "super-secret" {
		t.Errorf("SessionSecret = %q, ожидается super-secret", cfg.SessionSecret)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, ожидается 30m", cfg.SessionIdleTimeout)
	}
	if !cfg.SecureCookie {
		t.Error("SecureCookie = false, ожидается true")
	}
	if cfg.GoogleRedirectURL != "https://gamy.example.com/auth/google/callback" {
		t.Errorf("GoogleRedirectURL = %q", cfg.GoogleRedirectURL)
	}
	if cfg.GoogleTokenURL != "http://127.0.0.1:9999/token" {
		t.Errorf("GoogleTokenURL = %q", cfg.GoogleTokenURL)
	}
	if cfg.BootstrapAdminEmail != "root@gamy.com" {
		t.Errorf("BootstrapAdminEmail = %q, ожидается root@gamy.com", cfg.BootstrapAdminEmail)
	}
	if cfg.BootstrapAdminPassword != "changeme" {
		t.Errorf("BootstrapAdminPassword не загружен")
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Errorf("MaxUploadBytes = %d, ожидается 2048", cfg.MaxUploadBytes)
	}
	if cfg.ImageCacheSize != 16 {
		t.Errorf("ImageCacheSize = %d, ожидается 16", cfg.ImageCacheSize)
	}
	if cfg.ImageCacheTTL != time.Minute {
		t.Errorf("ImageCacheTTL = %v, ожидается 1m", cfg.ImageCacheTTL)
	}
	if cfg.DephealthGroup != "prod" {
		t.Errorf("DephealthGroup = %q, ожидается prod", cfg.DephealthGroup)
	}
	if cfg.DephealthCheckInterval != 30*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 30s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	required := []string{"GM_DB_HOST", "GM_DB_NAME", "GM_DB_USER", "GM_DB_PASSWORD"}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			envs := minimalEnvs()
			envs[key] = ""
			setEnvs(t, envs)

			_, err := Load(AppAdmin)
			if err == nil {
				t.Errorf("Load() не вернул ошибку при отсутствии %s", key)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"GM_PORT", "abc"},
		{"GM_PORT", "0"},
		{"GM_PORT", "70000"},
		{"GM_LOG_LEVEL", "trace"},
		{"GM_LOG_FORMAT", "xml"},
		{"GM_DB_SSL_MODE", "prefer"},
		{"GM_SESSION_IDLE_TIMEOUT", "abc"},
		{"GM_SESSION_IDLE_TIMEOUT", "10s"},
		{"GM_SECURE_COOKIE", "yes please"},
		{"GM_MAX_UPLOAD_BYTES", "10"},
		{"GM_IMAGE_CACHE_SIZE", "0"},
		{"GM_IMAGE_CACHE_TTL", "soon"},
		{"GM_SHUTDOWN_TIMEOUT", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			envs := minimalEnvs()
			envs[tt.key] = tt.value
			setEnvs(t, envs)

			_, err := Load(AppAdmin)
			if err == nil {
				t.Errorf("Load() не вернул ошибку при %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.example.com",
		DBPort:     5432,
		DBName:     "gamy",
		DBUser:     "user",
		DBPassword: "pass",
		DBSSLMode:  "disable",
	}
	expected := "host=db.example.com port=5432 dbname=gamy user=user password=pass sslmode=disable"
	if dsn := cfg.DatabaseDSN(); dsn != expected {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", dsn, expected)
	}
	if url := cfg.DatabaseURL(); url != "postgres://user@db.example.com:5432/gamy" {
		t.Errorf("DatabaseURL() = %q, пароль не должен попадать в URL", url)
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:       AppAdmin,
				LogLevel:  slog.LevelInfo,
				LogFormat: tt.format,
			}
			logger := SetupLogger(cfg)
			if logger == nil {
				t.Error("SetupLogger() вернул nil")
			}
		})
	}
}
