package supervisor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/litebittech/cex/services/dlob/internal/supervisor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunStopsCleanlyOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx, discardLogger(), func(ctx context.Context) error {
			calls.Add(1)
			<-ctx.Done()
			return ctx.Err()
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunReturnsAfterErrorOnceContextExpires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	supervisor.Run(ctx, discardLogger(), func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestRunRecoversPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx, discardLogger(), func(ctx context.Context) error {
			n := calls.Add(1)
			if n == 1 {
				panic("simulated crash")
			}
			<-ctx.Done()
			return ctx.Err()
		})
		close(done)
	}()

	// First build panics immediately; Run must recover it rather than
	// crash the test, then wait out RestartBackoff until canceled. The 15s
	// backoff outlasts this test, so no second build runs here.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
