package memory

import (
	"context"
	"sync"
	"time"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/repositories"
)

// SessionRepository хранит сессии в памяти по хэшу токена.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]entities.Session
}

// NewSessionRepository создает пустое хранилище сессий.
func NewSessionRepository() repositories.SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]entities.Session),
	}
}

// Save сохраняет сессию. Открытый токен не хранится.
func (r *SessionRepository) Save(_ context.Context, session *entities.Session) error {
	stored := *session
	stored.Token = ""

	r.mu.Lock()
	r.sessions[stored.TokenHash] = stored
	r.mu.Unlock()

	return nil
}

// FindByTokenHash ищет сессию по хэшу токена.
func (r *SessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}

	return &session, nil
}

// DeleteByTokenHash удаляет сессию.
func (r *SessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	delete(r.sessions, tokenHash)
	r.mu.Unlock()

	return nil
}

// Rotate заменяет сессию oldHash на next под одной блокировкой.
func (r *SessionRepository) Rotate(_ context.Context, oldHash string, next *entities.Session, retireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.sessions[oldHash]
	switch {
	case !ok:
		return entities.ErrSessionNotFound
	case old.IsRotated():
		return entities.ErrSessionRotated
	}

	stored := *next
	stored.Token = ""
	r.sessions[stored.TokenHash] = stored

	if retireAt.IsZero() {
		delete(r.sessions, oldHash)
		return nil
	}

	old.RotatedTo = stored.TokenHash
	if retireAt.Before(old.ExpiresAt) {
		old.ExpiresAt = retireAt
	}
	r.sessions[oldHash] = old

	return nil
}

// DeleteExpired удаляет сессии, истекшие к моменту now.
func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, session := range r.sessions {
		if session.IsExpiredAt(now) {
			delete(r.sessions, hash)
			removed++
		}
	}

	return removed, nil
}
