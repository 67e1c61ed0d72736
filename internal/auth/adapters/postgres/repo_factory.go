// Package postgres содержит репозитории пользователей и сессий поверх PostgreSQL.
package postgres

import (
	"sessiongate/internal/auth/ports/repositories"
)

// RepositoryFactory создает все необходимые репозитории для работы с PostgreSQL.
type RepositoryFactory struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{
		userRepo:    NewUserRepository(pool),
		sessionRepo: NewSessionRepository(pool),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}

// SessionRepository возвращает репозиторий сессий.
func (f *RepositoryFactory) SessionRepository() repositories.SessionRepository {
	return f.sessionRepo
}
