package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Console   ConsoleConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Audit     AuditConfig
	Exports   ExportsConfig
}

// UpstreamConfig points the console at the school REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DashboardConfig tunes filter debouncing and pagination defaults.
type DashboardConfig struct {
	Debounce   time.Duration
	PageSize   int
	PageWindow int
}

// ConsoleConfig governs console session lifetime and the login redirect.
type ConsoleConfig struct {
	SessionTTL    time.Duration
	LoginPath     string
	SessionHeader string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host            string
	Port            int
	Password        string
	DB              int
	KeyPrefix       string
	PoolSize        int
	ConnectAttempts int
	RetryDelay      time.Duration
}

// JWTConfig only carries the clock leeway; tokens are verified upstream.
type JWTConfig struct {
	Leeway time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuditConfig toggles the Postgres-backed mutation trail.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// ExportsConfig toggles CSV/PDF export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
	}

	pageSize := v.GetInt("DASHBOARD_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}
	pageWindow := v.GetInt("DASHBOARD_PAGE_WINDOW")
	if pageWindow <= 0 {
		pageWindow = 5
	}
	cfg.Dashboard = DashboardConfig{
		Debounce:   parseDuration(v.GetString("DASHBOARD_DEBOUNCE"), 300*time.Millisecond),
		PageSize:   pageSize,
		PageWindow: pageWindow,
	}

	cfg.Console = ConsoleConfig{
		SessionTTL:    parseDuration(v.GetString("CONSOLE_SESSION_TTL"), 12*time.Hour),
		LoginPath:     v.GetString("CONSOLE_LOGIN_PATH"),
		SessionHeader: v.GetString("CONSOLE_SESSION_HEADER"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:            v.GetString("REDIS_HOST"),
		Port:            v.GetInt("REDIS_PORT"),
		Password:        v.GetString("REDIS_PASSWORD"),
		DB:              v.GetInt("REDIS_DB"),
		KeyPrefix:       v.GetString("REDIS_KEY_PREFIX"),
		PoolSize:        v.GetInt("REDIS_POOL_SIZE"),
		ConnectAttempts: v.GetInt("REDIS_CONNECT_ATTEMPTS"),
		RetryDelay:      parseDuration(v.GetString("REDIS_RETRY_DELAY"), time.Second),
	}

	cfg.JWT = JWTConfig{
		Leeway: parseDuration(v.GetString("JWT_LEEWAY"), 30*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Audit = AuditConfig{
		Enabled:    v.GetBool("ENABLE_AUDIT"),
		Workers:    v.GetInt("AUDIT_WORKERS"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("AUDIT_RETRY_DELAY"), time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/console")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3000")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")

	v.SetDefault("DASHBOARD_DEBOUNCE", "300ms")
	v.SetDefault("DASHBOARD_PAGE_SIZE", 10)
	v.SetDefault("DASHBOARD_PAGE_WINDOW", 5)

	v.SetDefault("CONSOLE_SESSION_TTL", "12h")
	v.SetDefault("CONSOLE_LOGIN_PATH", "/login")
	v.SetDefault("CONSOLE_SESSION_HEADER", "X-Console-Session")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "console")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_CONNECT_ATTEMPTS", 5)
	v.SetDefault("REDIS_RETRY_DELAY", "1s")

	v.SetDefault("JWT_LEEWAY", "30s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_RETRY_DELAY", "1s")

	v.SetDefault("ENABLE_EXPORTS", true)
}

// isMissingFile reports a missing .env; with SetConfigFile viper returns the
// raw path error instead of ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
