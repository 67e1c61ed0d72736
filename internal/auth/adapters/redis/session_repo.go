// Package redis содержит хранилище сессий поверх Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/repositories"
	"sessiongate/pkg/logger"
)

// DefaultKeyPrefix - префикс ключей сессий.
const DefaultKeyPrefix = "session:"

// Client - подмножество клиента go-redis, которое использует репозиторий.
type Client interface {
	redis.Cmdable
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

// sessionRecord хранится в HASH. Время в Unix-наносекундах.
type sessionRecord struct {
	UserID    string `redis:"user_id"`
	IssuedAt  int64  `redis:"issued_at"`
	ExpiresAt int64  `redis:"expires_at"`
	RotatedTo string `redis:"rotated_to"`
}

// SessionRepository реализует repositories.SessionRepository.
// Ключ живет ровно до истечения сессии, поэтому Redis удаляет истекшие сессии сам.
type SessionRepository struct {
	client Client
	prefix string
	now    func() time.Time
}

// NewSessionRepository создает репозиторий. Пустой префикс заменяется DefaultKeyPrefix.
func NewSessionRepository(client Client, prefix string) repositories.SessionRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SessionRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *SessionRepository) key(tokenHash string) string {
	return r.prefix + tokenHash
}

// Save сохраняет сессию. Уже истекшая сессия не сохраняется.
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Save"))

	if !session.ExpiresAt.After(r.now()) {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.write(ctx, pipe, session)
		return nil
	})
	if err != nil {
		log.Error(ctx, "error storing session", zap.Error(err))
		return fmt.Errorf("error storing session: %w", err)
	}

	return nil
}

// FindByTokenHash находит сессию по хэшу токена.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "FindByTokenHash"))

	res := r.client.HGetAll(ctx, r.key(tokenHash))
	values, err := res.Result()
	if err != nil {
		log.Error(ctx, "error finding session", zap.Error(err))
		return nil, fmt.Errorf("error querying session: %w", err)
	}
	if len(values) == 0 {
		return nil, entities.ErrSessionNotFound
	}

	var record sessionRecord
	if err := res.Scan(&record); err != nil {
		log.Error(ctx, "error decoding session", zap.Error(err))
		return nil, fmt.Errorf("error decoding session: %w", err)
	}

	return &entities.Session{
		TokenHash: tokenHash,
		UserID:    record.UserID,
		IssuedAt:  time.Unix(0, record.IssuedAt).UTC(),
		ExpiresAt: time.Unix(0, record.ExpiresAt).UTC(),
		RotatedTo: record.RotatedTo,
	}, nil
}

// DeleteByTokenHash удаляет сессию. Отсутствие ключа не считается ошибкой.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "DeleteByTokenHash"))

	if err := r.client.Del(ctx, r.key(tokenHash)).Err(); err != nil {
		log.Error(ctx, "error deleting session", zap.Error(err))
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

// Rotate заменяет сессию в транзакции WATCH/MULTI/EXEC.
// Старый ключ либо удаляется, либо получает rotated_to и TTL до retireAt.
// Если старый ключ изменился до EXEC, ротацию выполнил другой запрос.
func (r *SessionRepository) Rotate(ctx context.Context, oldHash string, next *entities.Session, retireAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Rotate"))

	oldKey := r.key(oldHash)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, oldKey).Result()
		if err != nil {
			return err
		}
		switch {
		case len(values) == 0:
			return entities.ErrSessionNotFound
		case values["rotated_to"] != "":
			return entities.ErrSessionRotated
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next.ExpiresAt.After(r.now()) {
				r.write(ctx, pipe, next)
			}
			if retireAt.IsZero() || !retireAt.After(r.now()) {
				pipe.Del(ctx, oldKey)
				return nil
			}
			pipe.HSet(ctx, oldKey, "rotated_to", next.TokenHash, "expires_at", retireAt.UnixNano())
			pipe.ExpireAt(ctx, oldKey, retireAt)
			return nil
		})
		return err
	}, oldKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, entities.ErrSessionNotFound):
		return entities.ErrSessionNotFound
	case errors.Is(err, entities.ErrSessionRotated), errors.Is(err, redis.TxFailedErr):
		return entities.ErrSessionRotated
	default:
		log.Error(ctx, "error rotating session", zap.Error(err))
		return fmt.Errorf("error rotating session: %w", err)
	}
}

// DeleteExpired ничего не делает: ключи истекают по TTL.
func (r *SessionRepository) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *SessionRepository) write(ctx context.Context, pipe redis.Pipeliner, session *entities.Session) {
	key := r.key(session.TokenHash)
	pipe.HSet(ctx, key, &sessionRecord{
		UserID:    session.UserID,
		IssuedAt:  session.IssuedAt.UnixNano(),
		ExpiresAt: session.ExpiresAt.UnixNano(),
	})
	pipe.ExpireAt(ctx, key, session.ExpiresAt)
}
