package app

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/api"
)

// Ошибки конфигурации guard.
var (
	ErrInvalidRoutePrefix = errors.New("route prefix must start with '/'")
	ErrOverlappingRoutes  = errors.New("protected and auth-only prefixes overlap")
	ErrRedirectLoop       = errors.New("redirect target would redirect again")
)

// GuardConfig описывает классы маршрутов и цели перенаправления.
type GuardConfig struct {
	Protected     []string
	AuthOnly      []string
	Default       entities.RouteClass
	LoginPath     string
	DashboardPath string
}

// RouteGuardImpl реализует api.RouteGuard.
type RouteGuardImpl struct {
	rules         []entities.RouteRule
	defaultClass  entities.RouteClass
	loginPath     string
	dashboardPath string
}

// NewRouteGuard проверяет конфигурацию и создает guard.
// Префиксы protected и auth-only не должны перекрываться, иначе класс пути
// зависел бы от порядка правил. Цели перенаправления не должны сами вести к перенаправлению.
func NewRouteGuard(cfg GuardConfig) (api.RouteGuard, error) {
	for _, target := range []string{cfg.LoginPath, cfg.DashboardPath} {
		if !strings.HasPrefix(target, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRoutePrefix, target)
		}
	}

	rules := make([]entities.RouteRule, 0, len(cfg.Protected)+len(cfg.AuthOnly))
	for _, prefix := range cfg.Protected {
		rules = append(rules, entities.RouteRule{Prefix: strings.ToLower(prefix), Class: entities.RouteProtected})
	}
	for _, prefix := range cfg.AuthOnly {
		rules = append(rules, entities.RouteRule{Prefix: strings.ToLower(prefix), Class: entities.RouteAuthOnly})
	}

	for _, rule := range rules {
		if !strings.HasPrefix(rule.Prefix, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRoutePrefix, rule.Prefix)
		}
	}

	for _, p := range cfg.Protected {
		for _, a := range cfg.AuthOnly {
			lp, la := strings.ToLower(p), strings.ToLower(a)
			if strings.HasPrefix(lp, la) || strings.HasPrefix(la, lp) {
				return nil, fmt.Errorf("%w: %q and %q", ErrOverlappingRoutes, p, a)
			}
		}
	}

	guard := &RouteGuardImpl{
		rules:         rules,
		defaultClass:  cfg.Default,
		loginPath:     cfg.LoginPath,
		dashboardPath: cfg.DashboardPath,
	}

	if guard.Classify(cfg.LoginPath) == entities.RouteProtected {
		return nil, fmt.Errorf("%w: login path %q is protected", ErrRedirectLoop, cfg.LoginPath)
	}
	if guard.Classify(cfg.DashboardPath) == entities.RouteAuthOnly {
		return nil, fmt.Errorf("%w: dashboard path %q is auth-only", ErrRedirectLoop, cfg.DashboardPath)
	}

	return guard, nil
}

// Classify возвращает класс первого правила, префикс которого совпадает с путем.
// Путь сравнивается в каноническом виде, поэтому /DASHBOARD и /a/../dashboard
// не обходят правило /dashboard.
func (g *RouteGuardImpl) Classify(requestPath string) entities.RouteClass {
	canonical := canonicalPath(requestPath)
	for _, rule := range g.rules {
		if strings.HasPrefix(canonical, rule.Prefix) {
			return rule.Class
		}
	}
	return g.defaultClass
}

// Decide принимает решение по классу пути и наличию действительной сессии.
func (g *RouteGuardImpl) Decide(requestPath string, authenticated bool) entities.Decision {
	class := g.Classify(requestPath)

	switch {
	case class == entities.RouteProtected && !authenticated:
		return entities.RedirectTo(g.loginPath, class)
	case class == entities.RouteAuthOnly && authenticated:
		return entities.RedirectTo(g.dashboardPath, class)
	default:
		return entities.Allow(class)
	}
}

// canonicalPath приводит путь к нижнему регистру и убирает точки и повторные слэши.
// Завершающий слэш сохраняется.
func canonicalPath(requestPath string) string {
	if requestPath == "" {
		return ""
	}
	cleaned := path.Clean(requestPath)
	if strings.HasSuffix(requestPath, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return strings.ToLower(cleaned)
}
