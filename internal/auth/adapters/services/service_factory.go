// Package services содержит реализации сервисов паролей и сессий.
package services

import (
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/ports/repositories"
	svc "sessiongate/internal/auth/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService svc.PasswordService
	sessionService  svc.SessionService
}

// NewServiceFactory создает новую фабрику сервисов.
func NewServiceFactory(
	sessions repositories.SessionRepository,
	sessionCfg services.SessionConfig,
	bcryptCost int,
	opts ...Option,
) *ServiceFactory {
	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
		sessionService:  NewSessionService(sessions, sessionCfg, opts...),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() svc.PasswordService {
	return f.passwordService
}

// SessionService возвращает сервис сессий.
func (f *ServiceFactory) SessionService() svc.SessionService {
	return f.sessionService
}
