package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"sessiongate/internal/auth/domain/services"
	svc "sessiongate/internal/auth/ports/services"
)

// NewRequireSession пропускает только запросы с действительной сессией.
// API не продлевает сессии: ротацию выполняет guard страниц.
func NewRequireSession(sessions svc.SessionService, cookie CookieConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		session, err := sessions.Validate(RequestContext(c), cookie.SessionToken(c))
		if err != nil {
			if errors.Is(err, services.ErrSessionInvalid) {
				cookie.ClearSessionCookie(c)
			}
			return err
		}

		setSession(c, session)
		return c.Next()
	}
}
