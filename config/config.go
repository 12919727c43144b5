package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"3000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"2" validate:"min=0,ltefield=DBMaxConns"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// Cron schedule for background dependency probes; empty disables them.
	HealthProbeSchedule string `env:"HEALTH_PROBE_SCHEDULE" envDefault:"@every 30s"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	// Empty URL with ENV=local selects the in-memory provider.
	IdentityProviderURL     string        `env:"IDENTITY_PROVIDER_URL"     validate:"required_if=Env production,required_if=Env staging,omitempty,url"`
	IdentityProviderKey     string        `env:"IDENTITY_PROVIDER_KEY"     validate:"required_with=IdentityProviderURL"`
	IdentityProviderTimeout time.Duration `env:"IDENTITY_PROVIDER_TIMEOUT" envDefault:"10s" validate:"min=0"`

	RedisURL         string        `env:"REDIS_URL"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"60s"`

	// Welcome emails are only logged when RESEND_API_KEY is empty.
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM" validate:"required_with=ResendAPIKey"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto slog levels. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
