package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/repositories"
	"sessiongate/pkg/logger"
)

const (
	insertSessionQuery = `
        INSERT INTO sessions (token_hash, user_id, issued_at, expires_at)
        VALUES ($1, $2, $3, $4)
    `
	deleteSessionQuery = `DELETE FROM sessions WHERE token_hash = $1`
	lockSessionQuery   = `
        SELECT COALESCE(rotated_to, '')
        FROM sessions
        WHERE token_hash = $1
        FOR UPDATE
    `
	retireSessionQuery = `
        UPDATE sessions
        SET rotated_to = $2, expires_at = LEAST(expires_at, $3)
        WHERE token_hash = $1
    `
)

// SessionRepository реализует интерфейс repositories.SessionRepository для работы с Postgres.
type SessionRepository struct {
	pool PgxPoolInterface
}

// NewSessionRepository создает новый экземпляр репозитория сессий.
func NewSessionRepository(pool PgxPoolInterface) repositories.SessionRepository {
	return &SessionRepository{pool: pool}
}

// Save сохраняет сессию.
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Save"))

	_, err := r.pool.Exec(ctx, insertSessionQuery,
		session.TokenHash,
		session.UserID,
		session.IssuedAt,
		session.ExpiresAt,
	)
	if err != nil {
		log.Error(ctx, "error storing session", zap.Error(err))
		return fmt.Errorf("error storing session: %w", err)
	}

	return nil
}

// FindByTokenHash находит сессию по хэшу токена.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "FindByTokenHash"))

	query := `
        SELECT token_hash, user_id, issued_at, expires_at, COALESCE(rotated_to, '')
        FROM sessions
        WHERE token_hash = $1
    `

	var session entities.Session
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.TokenHash,
		&session.UserID,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.RotatedTo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		log.Error(ctx, "error finding session", zap.Error(err))
		return nil, fmt.Errorf("error querying session: %w", err)
	}

	return &session, nil
}

// DeleteByTokenHash удаляет сессию. Отсутствие записи не считается ошибкой.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "DeleteByTokenHash"))

	if _, err := r.pool.Exec(ctx, deleteSessionQuery, tokenHash); err != nil {
		log.Error(ctx, "error deleting session", zap.Error(err))
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

// Rotate в одной транзакции сохраняет новую сессию и выводит старую из оборота.
// SELECT ... FOR UPDATE блокирует старую строку, поэтому из конкурентных ротаций побеждает одна,
// а проигравшая видит уже заполненный rotated_to либо отсутствие строки.
func (r *SessionRepository) Rotate(ctx context.Context, oldHash string, next *entities.Session, retireAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Rotate"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error starting transaction", zap.Error(err))
		return fmt.Errorf("error starting transaction: %w", err)
	}

	var rotatedTo string
	if err := tx.QueryRow(ctx, lockSessionQuery, oldHash).Scan(&rotatedTo); err != nil {
		rollback(ctx, tx, log)
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.ErrSessionNotFound
		}
		log.Error(ctx, "error locking rotated session", zap.Error(err))
		return fmt.Errorf("error locking rotated session: %w", err)
	}
	if rotatedTo != "" {
		rollback(ctx, tx, log)
		return entities.ErrSessionRotated
	}

	if _, err := tx.Exec(ctx, insertSessionQuery,
		next.TokenHash,
		next.UserID,
		next.IssuedAt,
		next.ExpiresAt,
	); err != nil {
		rollback(ctx, tx, log)
		log.Error(ctx, "error storing rotated session", zap.Error(err))
		return fmt.Errorf("error storing rotated session: %w", err)
	}

	if retireAt.IsZero() {
		_, err = tx.Exec(ctx, deleteSessionQuery, oldHash)
	} else {
		_, err = tx.Exec(ctx, retireSessionQuery, oldHash, next.TokenHash, retireAt)
	}
	if err != nil {
		rollback(ctx, tx, log)
		log.Error(ctx, "error retiring rotated session", zap.Error(err))
		return fmt.Errorf("error retiring rotated session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing rotation", zap.Error(err))
		return fmt.Errorf("error committing rotation: %w", err)
	}

	return nil
}

// DeleteExpired удаляет сессии с expires_at не позже now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "DeleteExpired"))

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		log.Error(ctx, "error deleting expired sessions", zap.Error(err))
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rollback(ctx context.Context, tx pgx.Tx, log *logger.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Warn(ctx, "error rolling back transaction", zap.Error(err))
	}
}
