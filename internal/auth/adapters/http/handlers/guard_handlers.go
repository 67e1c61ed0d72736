package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"sessiongate/internal/auth/adapters/http/middleware"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/ports/api"
	svc "sessiongate/internal/auth/ports/services"
)

// GuardHandler отвечает внешнему слою отрисовки, что guard сделал бы с путем.
type GuardHandler struct {
	guard    api.RouteGuard
	sessions svc.SessionService
	cookie   middleware.CookieConfig
}

// NewGuardHandler создает обработчик решений guard.
func NewGuardHandler(guard api.RouteGuard, sessions svc.SessionService, cookie middleware.CookieConfig) *GuardHandler {
	return &GuardHandler{guard: guard, sessions: sessions, cookie: cookie}
}

// Decide возвращает решение для ?path= и сессии вызывающего. Сессия не продлевается.
func (h *GuardHandler) Decide(c fiber.Ctx) error {
	path := c.Query("path")
	if path == "" || path[0] != '/' {
		return fiber.NewError(fiber.StatusBadRequest, "path must start with '/'")
	}

	authenticated := false
	if token := h.cookie.SessionToken(c); token != "" {
		_, err := h.sessions.Validate(middleware.RequestContext(c), token)
		switch {
		case err == nil:
			authenticated = true
		case !errors.Is(err, services.ErrSessionInvalid):
			return err
		}
	}

	decision := h.guard.Decide(path, authenticated)
	return c.Status(fiber.StatusOK).JSON(DecisionResponse{
		Path:   path,
		Class:  decision.Class.String(),
		Action: decision.Action.String(),
		Target: decision.Target,
	})
}
