package repositories

import (
	"context"

	"sessiongate/internal/auth/domain/entities"
)

// UserRepository определяет интерфейс хранилища учетных записей.
type UserRepository interface {
	// InsertUnique атомарно проверяет уникальность email и сохраняет пользователя.
	// При занятом email возвращает entities.ErrDuplicateEmail.
	InsertUnique(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	// FindByEmail ищет пользователя без учета регистра email.
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
}
