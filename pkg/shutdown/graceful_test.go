package shutdown_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessiongate/pkg/shutdown"
)

func TestWaitExecutesHooksOnSignal(t *testing.T) {
	var calls atomic.Int32
	hook := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	waitDone := make(chan struct{})
	go func() {
		shutdown.Wait(context.Background(), time.Second, hook, hook)
		close(waitDone)
	}()

	time.Sleep(100 * time.Millisecond)

	process, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, process.Signal(syscall.SIGTERM))

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after SIGTERM")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestRunRespectsTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	shutdown.Run(context.Background(), 50*time.Millisecond, slow)

	assert.Less(t, time.Since(start), time.Second)
}

func TestRunToleratesFailingHooks(t *testing.T) {
	var okCalled atomic.Bool

	shutdown.Run(context.Background(), time.Second,
		func(context.Context) error { return errors.New("close failed") },
		func(context.Context) error {
			okCalled.Store(true)
			return nil
		},
	)

	assert.True(t, okCalled.Load())
}
