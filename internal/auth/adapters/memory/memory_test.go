package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessiongate/internal/auth/adapters/memory"
	"sessiongate/internal/auth/domain/entities"
)

const (
	msgNoErrorInsert       = "should not return error on insert"
	msgDuplicateRejected   = "duplicate email should be rejected"
	msgLookupCaseInsensive = "lookup by email should ignore case"
	msgSessionGone         = "session should be gone"
)

func TestUserRepositoryInsertUnique(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	created, err := repo.InsertUnique(ctx, &entities.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h"})
	require.NoError(t, err, msgNoErrorInsert)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.InsertUnique(ctx, &entities.User{Name: "Other", Email: "  ANN@Example.com ", PasswordHash: "h"})
	require.ErrorIs(t, err, entities.ErrDuplicateEmail, msgDuplicateRejected)

	found, err := repo.FindByEmail(ctx, "Ann@EXAMPLE.com")
	require.NoError(t, err, msgLookupCaseInsensive)
	assert.Equal(t, created.ID, found.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)
}

func TestUserRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	_, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "missing")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "")
	require.ErrorIs(t, err, entities.ErrEmptyUserID)
}

func TestUserRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	created, err := repo.InsertUnique(ctx, &entities.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	created.Name = "changed"

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.Name)
}

func TestUserRepositoryConcurrentInsertSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	const workers = 32
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.InsertUnique(ctx, &entities.User{Name: "Race", Email: "race@example.com"}); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one insert must win")
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Now()

	session := &entities.Session{Token: "plain", TokenHash: "h1", UserID: "u1", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, session))

	found, err := repo.FindByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
	assert.Empty(t, found.Token, "plain token must not be stored")

	require.NoError(t, repo.DeleteByTokenHash(ctx, "h1"))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "h1"), "delete should be idempotent")

	_, err = repo.FindByTokenHash(ctx, "h1")
	require.ErrorIs(t, err, entities.ErrSessionNotFound, msgSessionGone)
}

func TestSessionRepositoryRotate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "old", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	next := &entities.Session{TokenHash: "new", UserID: "u1", ExpiresAt: now.Add(2 * time.Hour)}
	require.NoError(t, repo.Rotate(ctx, "old", next, time.Time{}))

	_, err := repo.FindByTokenHash(ctx, "old")
	require.ErrorIs(t, err, entities.ErrSessionNotFound, msgSessionGone)

	_, err = repo.FindByTokenHash(ctx, "new")
	require.NoError(t, err)

	err = repo.Rotate(ctx, "old", &entities.Session{TokenHash: "newer", UserID: "u1"}, time.Time{})
	require.ErrorIs(t, err, entities.ErrSessionNotFound)

	_, err = repo.FindByTokenHash(ctx, "newer")
	require.ErrorIs(t, err, entities.ErrSessionNotFound, "losing rotation must not store its session")
}

func TestSessionRepositoryRotateKeepsRetiredRecord(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "old", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	retireAt := now.Add(30 * time.Second)
	next := &entities.Session{TokenHash: "new", UserID: "u1", ExpiresAt: now.Add(2 * time.Hour)}
	require.NoError(t, repo.Rotate(ctx, "old", next, retireAt))

	old, err := repo.FindByTokenHash(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "new", old.RotatedTo)
	assert.Equal(t, retireAt, old.ExpiresAt)

	err = repo.Rotate(ctx, "old", &entities.Session{TokenHash: "newer", UserID: "u1"}, retireAt)
	require.ErrorIs(t, err, entities.ErrSessionRotated)

	_, err = repo.FindByTokenHash(ctx, "newer")
	require.ErrorIs(t, err, entities.ErrSessionNotFound, "losing rotation must not store its session")
}

func TestSessionRepositoryConcurrentRotate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()

	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "old", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))

	const workers = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := &entities.Session{TokenHash: string(rune('a' + i)), UserID: "u1"}
			if err := repo.Rotate(ctx, "old", next, time.Now().Add(time.Minute)); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one rotation must win")
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "expired", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "boundary", ExpiresAt: now}))
	require.NoError(t, repo.Save(ctx, &entities.Session{TokenHash: "alive", ExpiresAt: now.Add(time.Minute)}))

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.FindByTokenHash(ctx, "alive")
	require.NoError(t, err)
}
