package config

import (
	"fmt"
	"strings"
	"time"

	"sessiongate/internal/auth/adapters/http/middleware"
	"sessiongate/internal/auth/domain/services"
)

// SessionConfig содержит настройки сессий и cookie.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl" env:"AUTH_SESSION_TTL" env-default:"168h"`
	RenewWindow     time.Duration `yaml:"renew_window" env:"AUTH_SESSION_RENEW_WINDOW" env-default:"24h"`
	RotationGrace   time.Duration `yaml:"rotation_grace" env:"AUTH_SESSION_ROTATION_GRACE" env-default:"30s"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"AUTH_SESSION_CLEANUP_INTERVAL" env-default:"1h"`
	CookieName      string        `yaml:"cookie_name" env:"AUTH_SESSION_COOKIE_NAME" env-default:"session"`
	CookieDomain    string        `yaml:"cookie_domain" env:"AUTH_SESSION_COOKIE_DOMAIN" env-default:""`
	CookieSecure    bool          `yaml:"cookie_secure" env:"AUTH_SESSION_COOKIE_SECURE" env-default:"true"`
	CookieSameSite  string        `yaml:"cookie_same_site" env:"AUTH_SESSION_COOKIE_SAME_SITE" env-default:"Lax"`
}

// Domain возвращает настройки сервиса сессий.
func (s *SessionConfig) Domain() services.SessionConfig {
	return services.SessionConfig{TTL: s.TTL, RenewWindow: s.RenewWindow, RotationGrace: s.RotationGrace}
}

// Cookie возвращает настройки cookie.
func (s *SessionConfig) Cookie() middleware.CookieConfig {
	return middleware.CookieConfig{
		Name:     s.CookieName,
		Domain:   s.CookieDomain,
		Secure:   s.CookieSecure,
		SameSite: s.CookieSameSite,
	}
}

func (s *SessionConfig) validate() []error {
	var errs []error
	if s.TTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_TTL must be positive, got %s", s.TTL))
	}
	if s.RenewWindow < 0 {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_RENEW_WINDOW must not be negative, got %s", s.RenewWindow))
	}
	if s.RotationGrace < 0 {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_ROTATION_GRACE must not be negative, got %s", s.RotationGrace))
	}
	if s.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_CLEANUP_INTERVAL must not be negative, got %s", s.CleanupInterval))
	}
	if s.CookieName == "" {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_COOKIE_NAME must not be empty"))
	}
	switch strings.ToLower(s.CookieSameSite) {
	case "lax", "strict":
	default:
		errs = append(errs, fmt.Errorf("AUTH_SESSION_COOKIE_SAME_SITE must be Lax or Strict, got %q", s.CookieSameSite))
	}
	return errs
}
