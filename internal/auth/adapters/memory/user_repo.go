// Package memory содержит хранилища пользователей и сессий в памяти процесса.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/repositories"
)

// UserRepository хранит пользователей в памяти. Email индексируется в нормализованном виде.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.User
	byEmail map[string]string
	now     func() time.Time
}

// NewUserRepository создает пустое хранилище пользователей.
func NewUserRepository() repositories.UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entities.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// InsertUnique сохраняет пользователя, если email еще не занят.
func (r *UserRepository) InsertUnique(_ context.Context, user *entities.User) (*entities.User, error) {
	key := entities.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return nil, entities.ErrDuplicateEmail
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = &stored
	r.byEmail[key] = stored.ID

	result := stored
	return &result, nil
}

// FindByID ищет пользователя по идентификатору.
func (r *UserRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	if id == "" {
		return nil, entities.ErrEmptyUserID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	result := *user
	return &result, nil
}

// FindByEmail ищет пользователя по email без учета регистра.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[entities.NormalizeEmail(email)]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	result := *r.byID[id]
	return &result, nil
}
