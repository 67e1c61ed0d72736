package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/metrics"
	"sessiongate/internal/auth/ports/api"
	svc "sessiongate/internal/auth/ports/services"
	"sessiongate/pkg/logger"
)

const (
	logGuardRedirect  = "guard redirect"
	logSessionRotated = "session cookie rotated"
	logStoreFailure   = "session store unavailable, failing closed"
)

// DefaultBypassPrefixes - пути, которые guard страниц не обрабатывает.
var DefaultBypassPrefixes = []string{"/api", "/metrics", "/static", "/favicon.ico"}

// GuardConfig настраивает guard страниц.
type GuardConfig struct {
	Guard          api.RouteGuard
	Sessions       svc.SessionService
	Cookie         CookieConfig
	BypassPrefixes []string
}

// NewGuardMiddleware проверяет (и при необходимости продлевает) сессию из cookie и
// применяет решение RouteGuard до обработчика страницы.
// Сбой хранилища сессий не трактуется как отсутствие сессии: запрос завершается 503.
func NewGuardMiddleware(cfg GuardConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		if bypassed(path, cfg.BypassPrefixes) {
			return c.Next()
		}

		requestCtx := RequestContext(c)
		log := logger.Log(requestCtx).With(zap.String("middleware", "guard"), zap.String("path", path))

		authenticated := false
		if token := cfg.Cookie.SessionToken(c); token != "" {
			session, rotated, err := cfg.Sessions.Renew(requestCtx, token)
			switch {
			case err == nil:
				authenticated = true
				setSession(c, session)
				if rotated {
					cfg.Cookie.SetSessionCookie(c, session)
					log.Debug(requestCtx, logSessionRotated)
				}
			case errors.Is(err, services.ErrSessionInvalid):
				cfg.Cookie.ClearSessionCookie(c)
			default:
				log.Error(requestCtx, logStoreFailure, zap.Error(err))
				return err
			}
		}

		decision := cfg.Guard.Decide(path, authenticated)
		metrics.RecordGuardDecision(decision.Class.String(), decision.Action.String())

		if decision.Action == entities.ActionRedirect {
			log.Debug(requestCtx, logGuardRedirect, zap.String("target", decision.Target))
			return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(decision.Target)
		}

		return c.Next()
	}
}

func bypassed(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
