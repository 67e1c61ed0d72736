package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessiongate/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *redis.Config {
	t.Helper()

	host, portStr, ok := strings.Cut(addr, ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second
	return cfg
}

func TestNewClient_Success(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), configFor(t, server.Addr()))
	require.NoError(t, err)

	require.NoError(t, client.RawClient().Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", mustGet(t, server, "k"))

	assert.NoError(t, client.Close())
}

func mustGet(t *testing.T, server *miniredis.Miniredis, key string) string {
	t.Helper()
	value, err := server.Get(key)
	require.NoError(t, err)
	return value
}

func TestNewClient_CanceledContext(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := configFor(t, server.Addr())
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := redis.NewClient(ctx, cfg)
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
