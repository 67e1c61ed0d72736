package config

import (
	"sessiongate/internal/auth/app"
	"sessiongate/internal/auth/domain/entities"
)

// RoutesConfig описывает классы маршрутов. Списки префиксов разделяются запятой.
type RoutesConfig struct {
	Protected     []string `yaml:"protected" env:"AUTH_ROUTES_PROTECTED" env-separator:"," env-default:"/dashboard"`
	AuthOnly      []string `yaml:"auth_only" env:"AUTH_ROUTES_AUTH_ONLY" env-separator:"," env-default:"/login,/register"`
	Default       string   `yaml:"default" env:"AUTH_ROUTES_DEFAULT" env-default:"public"`
	LoginPath     string   `yaml:"login_path" env:"AUTH_ROUTES_LOGIN_PATH" env-default:"/login"`
	DashboardPath string   `yaml:"dashboard_path" env:"AUTH_ROUTES_DASHBOARD_PATH" env-default:"/dashboard"`
	Bypass        []string `yaml:"bypass" env:"AUTH_ROUTES_BYPASS" env-separator:"," env-default:"/api,/metrics,/static,/favicon.ico"`
}

// Guard строит конфигурацию RouteGuard. Согласованность правил проверяет app.NewRouteGuard.
func (r *RoutesConfig) Guard() (app.GuardConfig, error) {
	class, err := entities.ParseRouteClass(r.Default)
	if err != nil {
		return app.GuardConfig{}, err
	}
	return app.GuardConfig{
		Protected:     r.Protected,
		AuthOnly:      r.AuthOnly,
		Default:       class,
		LoginPath:     r.LoginPath,
		DashboardPath: r.DashboardPath,
	}, nil
}

func (r *RoutesConfig) validate() []error {
	guardCfg, err := r.Guard()
	if err != nil {
		return []error{err}
	}
	if _, err := app.NewRouteGuard(guardCfg); err != nil {
		return []error{err}
	}
	return nil
}
