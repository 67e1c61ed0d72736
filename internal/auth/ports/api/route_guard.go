package api

import "sessiongate/internal/auth/domain/entities"

// RouteGuard классифицирует пути и принимает решение о доступе.
type RouteGuard interface {
	Classify(path string) entities.RouteClass

	// Decide - чистая функция от пути и факта аутентификации.
	Decide(path string, authenticated bool) entities.Decision
}
