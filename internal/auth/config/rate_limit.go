package config

import (
	"time"

	"sessiongate/internal/auth/adapters/http/middleware"
)

// RateLimitConfig ограничивает частоту запросов к маршрутам аутентификации.
type RateLimitConfig struct {
	Max    int           `yaml:"max" env:"AUTH_RATE_LIMIT_MAX" env-default:"60"`
	Window time.Duration `yaml:"window" env:"AUTH_RATE_LIMIT_WINDOW" env-default:"1m"`
}

// Middleware возвращает настройки middleware.
func (r *RateLimitConfig) Middleware() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{Max: r.Max, Window: r.Window}
}
