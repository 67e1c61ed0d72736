// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/pkg/logger"
)

// Ключи fiber Locals.
const (
	localsRequestCtx = "sessiongate.request_ctx"
	localsSession    = "sessiongate.session"
)

// NewContextMiddleware создает контекст запроса с request_id, который получают все обработчики.
// Идентификатор берется из ответа middleware requestid.
func NewContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)
		c.Locals(localsRequestCtx, logger.NewRequestIDContext(c.Context(), requestID))
		return c.Next()
	}
}

// RequestContext возвращает контекст запроса.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsRequestCtx).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

// SessionFromLocals возвращает сессию, проверенную guard или RequireSession.
func SessionFromLocals(c fiber.Ctx) (*entities.Session, bool) {
	session, ok := c.Locals(localsSession).(*entities.Session)
	return session, ok && session != nil
}

func setSession(c fiber.Ctx, session *entities.Session) {
	c.Locals(localsSession, session)
}
