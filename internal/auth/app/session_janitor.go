package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	svc "sessiongate/internal/auth/ports/services"
	"sessiongate/pkg/logger"
)

const (
	msgJanitorStarted = "session janitor started"
	msgJanitorStopped = "session janitor stopped"
	msgJanitorFailed  = "session janitor run failed"
)

// SessionJanitor периодически удаляет истекшие сессии.
type SessionJanitor struct {
	sessions svc.SessionService
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionJanitor создает janitor. Неположительный интервал отключает его.
func NewSessionJanitor(sessions svc.SessionService, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{sessions: sessions, interval: interval}
}

// Start запускает фоновый цикл. Повторный вызов ничего не делает.
func (j *SessionJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})

	go j.loop(runCtx, j.done)
}

// Stop останавливает цикл и дожидается его завершения либо отмены ctx.
func (j *SessionJanitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *SessionJanitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	log := logger.Log(ctx).With(zap.String("component", "session_janitor"))
	log.Info(ctx, msgJanitorStarted, zap.Duration("interval", j.interval))
	defer log.Info(ctx, msgJanitorStopped)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.sessions.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				log.Warn(ctx, msgJanitorFailed, zap.Error(err))
			}
		}
	}
}
