package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sessiongate/pkg/logger"
)

// NewLoggerMiddleware создает новое промежуточное ПО для логирования HTTP запросов.
func NewLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := RequestContext(c)
		start := time.Now()

		log := logger.Log(requestCtx).With(
			zap.String("path", c.Path()),
			zap.String("http_method", c.Method()),
			zap.String("ip", c.IP()),
		)

		log.Debug(requestCtx, "Request started")

		err := c.Next()

		// Ошибка еще не прошла через ErrorHandler, статус ответа пока не окончательный.
		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Info(requestCtx, "Request failed", append(fields, zap.Error(err))...)
			return err
		}

		log.Info(requestCtx, "Request completed", fields...)
		return nil
	}
}
