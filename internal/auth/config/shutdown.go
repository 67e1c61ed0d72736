package config

import (
	"time"
)

// ShutdownConfig задает общий срок на остановку HTTP сервера, janitor и хранилищ.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"AUTH_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetTimeout возвращает срок остановки. Неположительное значение заменяется значением по умолчанию.
func (s *ShutdownConfig) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultShutdownTimeout
	}
	return s.Timeout
}

// DefaultShutdownTimeout - срок остановки по умолчанию.
const DefaultShutdownTimeout = 5 * time.Second
