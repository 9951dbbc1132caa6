package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		JWT
		Auth
		RateLimit
		CORS
		Realtime
		Audit
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	JWT struct {
		Secret         string
		Issuer         string
		Audience       string
		ExpiresMinutes int
	}
	Auth struct {
		BcryptCost       int
		MaxLoginAttempts int           // Failed logins before lockout (default: 5)
		LockoutDuration  time.Duration // How long a locked account stays locked (default: 15m)
	}
	RateLimit struct {
		AuthPerMinute int
		APIPerMinute  int
	}
	CORS struct {
		AllowedOrigins []string
	}
	Realtime struct {
		BufferSize        int           // Per-connection event buffer
		HeartbeatInterval time.Duration // Keep-alive comment interval for SSE streams
	}
	Audit struct {
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Log struct {
		Level string
	}
)

func NewConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_level", "info")

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// JWT defaults; the secret has no default on purpose
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "mercer-library")
	v.SetDefault("jwt_audience", "mercer-library-clients")
	v.SetDefault("jwt_expires_minutes", 60)

	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "15m")

	v.SetDefault("rate_limit_auth_per_minute", 10)
	v.SetDefault("rate_limit_api_per_minute", 300)

	v.SetDefault("cors_allowed_origins", "http://localhost:5173")

	v.SetDefault("realtime_buffer_size", 32)
	v.SetDefault("realtime_heartbeat_interval", "25s")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 5)
	v.SetDefault("task_retry_delay", "30s")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(strings.ToLower(v.GetString("DATABASE_DRIVER"))),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWT{
			Secret:         v.GetString("JWT_SECRET"),
			Issuer:         v.GetString("JWT_ISSUER"),
			Audience:       v.GetString("JWT_AUDIENCE"),
			ExpiresMinutes: v.GetInt("JWT_EXPIRES_MINUTES"),
		},
		Auth: Auth{
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		RateLimit: RateLimit{
			AuthPerMinute: v.GetInt("RATE_LIMIT_AUTH_PER_MINUTE"),
			APIPerMinute:  v.GetInt("RATE_LIMIT_API_PER_MINUTE"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Realtime: Realtime{
			BufferSize:        v.GetInt("REALTIME_BUFFER_SIZE"),
			HeartbeatInterval: v.GetDuration("REALTIME_HEARTBEAT_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.Secret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE is required"))
	}
	if c.JWT.ExpiresMinutes < 1 || c.JWT.ExpiresMinutes > 1440 {
		errs = append(errs, errors.New("JWT_EXPIRES_MINUTES must be between 1 and 1440"))
	}
	if c.RateLimit.AuthPerMinute < 1 || c.RateLimit.AuthPerMinute > 10000 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_PER_MINUTE must be between 1 and 10000"))
	}
	if c.RateLimit.APIPerMinute < 1 || c.RateLimit.APIPerMinute > 10000 {
		errs = append(errs, errors.New("RATE_LIMIT_API_PER_MINUTE must be between 1 and 10000"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
