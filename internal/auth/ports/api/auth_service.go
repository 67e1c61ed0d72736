package api

import (
	"context"

	"sessiongate/internal/auth/domain/entities"
)

// AuthUseCase определяет сценарии регистрации, входа и выхода.
type AuthUseCase interface {
	// Register создает учетную запись и сразу выдает сессию.
	Register(ctx context.Context, name, email, password string) (*entities.Session, error)

	Login(ctx context.Context, email, password string) (*entities.Session, error)

	Logout(ctx context.Context, token string) error

	// CurrentUser возвращает владельца действительной сессии.
	CurrentUser(ctx context.Context, token string) (*entities.User, error)
}
