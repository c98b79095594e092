package config

import (
	"time"

	"github.com/spf13/viper"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type (
	Config struct {
		HTTP
		Database
		Redis
		Auth
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	// Redis configures the durable session token store. When Addr is empty
	// the portal falls back to the in-process store, which is only suitable
	// for single-process deployments.
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		SecureCookies   bool
		CSRFEnabled     bool

		// scrypt cost parameters. Zero values fall back to the package
		// defaults in internal/auth.
		ScryptN int
		ScryptR int
		ScryptP int
	}
	Audit struct {
		RetentionDays int
	}
	Global struct {
		Environment              Environment
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Redis defaults - empty address means in-memory session store
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Required in production
	v.SetDefault("auth_session_lifetime", "720h") // 30 days
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_scrypt_n", 32768)
	v.SetDefault("auth_scrypt_r", 8)
	v.SetDefault("auth_scrypt_p", 1)

	// Audit defaults
	v.SetDefault("audit_retention_days", 90)

	env := Environment(v.GetString("ENVIRONMENT"))

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			// Production always gets Secure cookies, regardless of the env var.
			SecureCookies: v.GetBool("AUTH_SECURE_COOKIES") || env == EnvProduction,
			CSRFEnabled:   v.GetBool("AUTH_CSRF_ENABLED"),
			ScryptN:       v.GetInt("AUTH_SCRYPT_N"),
			ScryptR:       v.GetInt("AUTH_SCRYPT_R"),
			ScryptP:       v.GetInt("AUTH_SCRYPT_P"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			Environment:              env,
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// IsProduction reports whether the portal runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Global.Environment == EnvProduction
}
