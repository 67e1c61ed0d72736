package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"sessiongate/internal/auth/domain/entities"
)

// DefaultCookieName - имя cookie сессии по умолчанию.
const DefaultCookieName = "session"

// CookieConfig задает атрибуты cookie сессии.
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite string
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c CookieConfig) sameSite() string {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return fiber.CookieSameSiteStrictMode
	default:
		return fiber.CookieSameSiteLaxMode
	}
}

// SessionToken читает токен сессии из cookie запроса.
func (c CookieConfig) SessionToken(ctx fiber.Ctx) string {
	return ctx.Cookies(c.name())
}

// SetSessionCookie выставляет cookie с токеном, живущую до истечения сессии.
func (c CookieConfig) SetSessionCookie(ctx fiber.Ctx, session *entities.Session) {
	ctx.Cookie(&fiber.Cookie{
		Name:     c.name(),
		Value:    session.Token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  session.ExpiresAt,
		Secure:   c.Secure,
		HTTPOnly: true,
		SameSite: c.sameSite(),
	})
}

// ClearSessionCookie удаляет cookie сессии в браузере.
func (c CookieConfig) ClearSessionCookie(ctx fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0),
		Secure:   c.Secure,
		HTTPOnly: true,
		SameSite: c.sameSite(),
	})
}
