// Package redis предоставляет общую реализацию клиента Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"sessiongate/pkg/logger"
)

const (
	logConnecting = "connecting to Redis"
	logConnected  = "successfully connected to Redis"
	logPingRetry  = "redis is not reachable yet, retrying"

	errConnect = "failed to connect to Redis"
	errClose   = "failed to close Redis connection"
)

// Параметры ожидания Redis при старте.
const (
	ConnectRetries = 5
	ConnectBackoff = 200 * time.Millisecond
)

// Client обертывает клиент Redis.
type Client struct {
	client *redis.Client
}

// NewClient создает клиент и дожидается ответа на PING.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	log := logger.Log(ctx).With(zap.String("address", cfg.Address()))
	log.Info(ctx, logConnecting)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	backoff := retry.WithMaxRetries(ConnectRetries, retry.NewExponential(ConnectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			log.Warn(ctx, logPingRetry, zap.Error(pingErr))
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", errConnect, err)
	}

	log.Info(ctx, logConnected)
	return &Client{client: rdb}, nil
}

// RawClient возвращает базовый клиент go-redis.
func (c *Client) RawClient() *redis.Client {
	return c.client
}

// Close закрывает соединение с Redis.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", errClose, err)
	}
	return nil
}
