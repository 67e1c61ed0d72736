// Package services содержит доменные ошибки и настройки сервисов аутентификации.
package services

import "time"

// Параметры сессий по умолчанию.
const (
	DefaultSessionTTL    = 7 * 24 * time.Hour
	DefaultRenewWindow   = 24 * time.Hour
	DefaultRotationGrace = 30 * time.Second
	// SessionTokenBytes - 256 бит энтропии на токен.
	SessionTokenBytes = 32
	// MaxRotationHops ограничивает цепочку старых токенов, ведущих к действующей сессии.
	MaxRotationHops = 4
)

// SessionConfig задает время жизни сессий и окно продления.
type SessionConfig struct {
	TTL time.Duration
	// RenewWindow - остаток жизни, при котором сессия ротируется. 0 отключает продление.
	RenewWindow time.Duration
	// RotationGrace - сколько старый токен еще принимается после ротации.
	// 0 удаляет старую запись сразу.
	RotationGrace time.Duration
}

// DefaultSessionConfig возвращает настройки по умолчанию.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:           DefaultSessionTTL,
		RenewWindow:   DefaultRenewWindow,
		RotationGrace: DefaultRotationGrace,
	}
}
