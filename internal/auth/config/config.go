// Package config содержит конфигурацию сервиса сессий.
package config

import (
	"context"
	"errors"
	"fmt"

	"os"

	"go.uber.org/zap"

	pkgconfig "sessiongate/pkg/config"
	"sessiongate/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName           = "sessiongate"
	ConfigFileEnv         = "AUTH_CONFIG_FILE"
	LogConfigSummary      = "session gate configuration"
	ErrFailedLoadConfig   = "failed to load session gate configuration"
	ErrInvalidConfigValue = "invalid session gate configuration"
)

// ErrInvalidConfig оборачивает все ошибки проверки конфигурации.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config представляет полную конфигурацию приложения.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Session   SessionConfig   `yaml:"session"`
	Routes    RoutesConfig    `yaml:"routes"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Password  PasswordConfig  `yaml:"password"`
	Logging   LoggingConfig   `yaml:"logging"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
}

// Load загружает конфигурацию из файла AUTH_CONFIG_FILE (если задан) и переменных окружения,
// затем проверяет ее.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, os.Getenv(ConfigFileEnv))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrInvalidConfigValue, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("user_store", cfg.Storage.Users),
		zap.String("session_store", cfg.Storage.Sessions),
		zap.Duration("session_ttl", cfg.Session.TTL),
		zap.Duration("session_renew_window", cfg.Session.RenewWindow),
		zap.Strings("protected_routes", cfg.Routes.Protected),
		zap.Strings("auth_only_routes", cfg.Routes.AuthOnly),
		zap.String("default_route_class", cfg.Routes.Default),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode))

	return cfg, nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.Storage.validate()...)
	errs = append(errs, c.Session.validate()...)
	errs = append(errs, c.Routes.validate()...)

	if c.RateLimit.Max < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_MAX must not be negative, got %d", c.RateLimit.Max))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// NeedsPostgres сообщает, использует ли какое-либо хранилище Postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Users == StorePostgres || c.Storage.Sessions == StorePostgres
}

// NeedsRedis сообщает, хранятся ли сессии в Redis.
func (c *Config) NeedsRedis() bool {
	return c.Storage.Sessions == StoreRedis
}
