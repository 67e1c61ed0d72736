package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"go.uber.org/zap"

	"sessiongate/pkg/logger"
)

// Параметры ограничения по умолчанию.
const (
	DefaultRateLimitMax    = 60
	DefaultRateLimitWindow = time.Minute
)

// RateLimitConfig задает лимит запросов с одного IP.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// NewRateLimitMiddleware ограничивает число запросов с одного IP в окне.
func NewRateLimitMiddleware(cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = DefaultRateLimitMax
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRateLimitWindow
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			requestCtx := RequestContext(c)
			logger.Log(requestCtx).Warn(requestCtx, "rate limit exceeded",
				zap.String("ip", c.IP()), zap.String("path", c.Path()))
			return fiber.ErrTooManyRequests
		},
	})
}
