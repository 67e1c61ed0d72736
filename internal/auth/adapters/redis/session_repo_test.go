package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessiongate/internal/auth/adapters/redis"
	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/repositories"
)

func newTestRepository(t *testing.T) (*miniredis.Miniredis, repositories.SessionRepository) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, redis.NewSessionRepository(client, "")
}

func newSession(hash string, ttl time.Duration) *entities.Session {
	issued := time.Now().UTC().Truncate(time.Second)
	return &entities.Session{
		Token:     "plain-" + hash,
		TokenHash: hash,
		UserID:    "user-1",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(ttl),
	}
}

func TestSaveAndFind(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	session := newSession("hash-1", time.Hour)
	require.NoError(t, repo.Save(ctx, session))

	assert.True(t, server.Exists("session:hash-1"))
	assert.Positive(t, server.TTL("session:hash-1"), "key must carry a TTL")
	assert.Empty(t, server.HGet("session:hash-1", "token"), "plain token must not be stored")

	found, err := repo.FindByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", found.TokenHash)
	assert.Equal(t, "user-1", found.UserID)
	assert.True(t, session.IssuedAt.Equal(found.IssuedAt))
	assert.True(t, session.ExpiresAt.Equal(found.ExpiresAt))
	assert.Empty(t, found.Token)
}

func TestSaveExpiredSessionIsSkipped(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("stale", -time.Minute)))
	assert.False(t, server.Exists("session:stale"))
}

func TestFindMissing(t *testing.T) {
	_, repo := newTestRepository(t)

	_, err := repo.FindByTokenHash(context.Background(), "missing")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestKeyExpiresWithSession(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("hash-1", time.Hour)))

	server.FastForward(2 * time.Hour)

	_, err := repo.FindByTokenHash(ctx, "hash-1")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)

	removed, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("hash-1", time.Hour)))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "hash-1"))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "hash-1"))

	_, err := repo.FindByTokenHash(ctx, "hash-1")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("old", time.Hour)))

	require.NoError(t, repo.Rotate(ctx, "old", newSession("new", 2*time.Hour), time.Time{}))
	assert.False(t, server.Exists("session:old"))
	assert.True(t, server.Exists("session:new"))

	err := repo.Rotate(ctx, "old", newSession("newer", 2*time.Hour), time.Time{})
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
	assert.False(t, server.Exists("session:newer"), "losing rotation must not store its session")
}

func TestRotateKeepsRetiredKey(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("old", time.Hour)))

	retireAt := time.Now().Add(30 * time.Second)
	require.NoError(t, repo.Rotate(ctx, "old", newSession("new", 2*time.Hour), retireAt))

	old, err := repo.FindByTokenHash(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "new", old.RotatedTo)
	assert.Equal(t, retireAt.UnixNano(), old.ExpiresAt.UnixNano())
	ttl := server.TTL("session:old")
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 30*time.Second)

	err = repo.Rotate(ctx, "old", newSession("newer", 2*time.Hour), retireAt)
	require.ErrorIs(t, err, entities.ErrSessionRotated)
	assert.False(t, server.Exists("session:newer"), "losing rotation must not store its session")

	server.FastForward(31 * time.Second)
	_, err = repo.FindByTokenHash(ctx, "old")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestConcurrentRotateSingleWinner(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	require.NoError(t, repo.Save(ctx, newSession("old", time.Hour)))

	const workers = 8
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := newSession("next-"+string(rune('a'+i)), time.Hour)
			if err := repo.Rotate(ctx, "old", next, time.Time{}); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one rotation must win")
	assert.Len(t, server.Keys(), 1)
}

func TestStoreFailure(t *testing.T) {
	ctx := context.Background()
	server, repo := newTestRepository(t)

	server.SetError("server is down")

	_, err := repo.FindByTokenHash(ctx, "hash-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, entities.ErrSessionNotFound, "store failure must not look like a missing session")

	require.Error(t, repo.Save(ctx, newSession("hash-1", time.Hour)))
	require.Error(t, repo.DeleteByTokenHash(ctx, "hash-1"))
}
