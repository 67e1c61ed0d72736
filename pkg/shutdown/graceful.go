// Package shutdown реализует корректное завершение процесса по SIGINT/SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sessiongate/pkg/logger"
)

// Hook освобождает один ресурс в рамках общего таймаута.
type Hook func(ctx context.Context) error

const (
	logSignalReceived = "shutdown signal received"
	logHookFailed     = "shutdown hook failed"
	logTimeout        = "shutdown timeout exceeded"
)

// Wait блокируется до получения SIGINT или SIGTERM, затем параллельно выполняет хуки,
// ожидая их не дольше timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Log(ctx).Info(ctx, logSignalReceived, zap.String("signal", sig.String()))

	Run(ctx, timeout, hooks...)
}

// Run выполняет хуки без ожидания сигнала.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	log := logger.Log(ctx)

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(hookCtx); err != nil {
				log.Error(hookCtx, logHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-hookCtx.Done():
		log.Warn(ctx, logTimeout, zap.Duration("timeout", timeout))
	}
}
