package entities

import (
	"fmt"
	"strings"
)

// RouteClass задает требования маршрута к наличию сессии.
type RouteClass int

// Классы маршрутов.
const (
	// RoutePublic не накладывает ограничений.
	RoutePublic RouteClass = iota
	// RouteProtected требует действительной сессии.
	RouteProtected
	// RouteAuthOnly требует отсутствия сессии (вход, регистрация).
	RouteAuthOnly
)

// String возвращает имя класса.
func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteProtected:
		return "protected"
	case RouteAuthOnly:
		return "auth_only"
	default:
		return fmt.Sprintf("RouteClass(%d)", int(c))
	}
}

// ParseRouteClass разбирает имя класса из конфигурации.
func ParseRouteClass(s string) (RouteClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return RoutePublic, nil
	case "protected":
		return RouteProtected, nil
	case "auth_only", "auth-only", "authonly":
		return RouteAuthOnly, nil
	default:
		return RoutePublic, fmt.Errorf("unknown route class %q", s)
	}
}

// RouteRule относит к классу все пути с данным префиксом.
type RouteRule struct {
	Prefix string
	Class  RouteClass
}

// Action - итог решения guard.
type Action int

// Действия guard.
const (
	ActionAllow Action = iota
	ActionRedirect
)

// String возвращает имя действия.
func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "allow"
}

// Decision - решение guard для запроса.
type Decision struct {
	Action Action
	Target string
	Class  RouteClass
}

// Allow возвращает разрешающее решение.
func Allow(class RouteClass) Decision {
	return Decision{Action: ActionAllow, Class: class}
}

// RedirectTo возвращает решение о перенаправлении.
func RedirectTo(target string, class RouteClass) Decision {
	return Decision{Action: ActionRedirect, Target: target, Class: class}
}
