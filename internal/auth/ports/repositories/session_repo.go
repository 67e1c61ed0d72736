package repositories

import (
	"context"
	"time"

	"sessiongate/internal/auth/domain/entities"
)

// SessionRepository определяет интерфейс хранилища сессий. Ключом служит хэш токена.
type SessionRepository interface {
	Save(ctx context.Context, session *entities.Session) error

	FindByTokenHash(ctx context.Context, tokenHash string) (*entities.Session, error)

	// DeleteByTokenHash идемпотентен: отсутствие записи не является ошибкой.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// Rotate атомарно сохраняет next и выводит из оборота запись oldHash.
	// Нулевой retireAt удаляет старую запись сразу; иначе она остается до retireAt
	// с RotatedTo = next.TokenHash.
	// Если oldHash отсутствует, возвращает entities.ErrSessionNotFound, если уже
	// ротирован - entities.ErrSessionRotated; в обоих случаях next не сохраняется.
	Rotate(ctx context.Context, oldHash string, next *entities.Session, retireAt time.Time) error

	// DeleteExpired удаляет сессии, истекшие к моменту now, и возвращает их количество.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
