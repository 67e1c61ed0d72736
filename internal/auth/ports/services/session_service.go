package services

import (
	"context"

	"sessiongate/internal/auth/domain/entities"
)

// SessionService управляет жизненным циклом сессий.
type SessionService interface {
	// Create выдает новую сессию. Поле Token результата передается клиенту.
	Create(ctx context.Context, userID string) (*entities.Session, error)

	// Validate возвращает сессию по токену либо services.ErrSessionInvalid.
	// Сбой хранилища возвращается как services.ErrStoreUnavailable.
	Validate(ctx context.Context, token string) (*entities.Session, error)

	// Destroy отзывает сессию. Повторный вызов и пустой токен не являются ошибкой.
	Destroy(ctx context.Context, token string) error

	// Renew проверяет сессию и ротирует ее, если до истечения осталось меньше окна продления.
	// Второе значение сообщает, был ли выдан новый токен.
	Renew(ctx context.Context, token string) (*entities.Session, bool, error)

	// PurgeExpired удаляет истекшие сессии.
	PurgeExpired(ctx context.Context) (int64, error)
}
