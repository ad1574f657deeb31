package main

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterruptWatcher_SignalCancels(t *testing.T) {
	ctx, w := newInterruptWatcher(context.Background())
	go w.loop()
	defer w.Stop()

	w.signals <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by signal")
	}
}

func TestInterruptWatcher_ReleaseWithoutSignal(t *testing.T) {
	ctx, w := newInterruptWatcher(context.Background())
	go w.loop()

	w.Release()
	assert.NoError(t, ctx.Err())

	// Idempotent
	w.Release()
	assert.NoError(t, ctx.Err())

	w.Stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

// A signal still buffered when the watcher is released must not be lost,
// whichever branch the watcher loop picked.
func TestInterruptWatcher_PendingSignalCancelsOnRelease(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, w := newInterruptWatcher(context.Background())
		w.signals <- syscall.SIGTERM
		go w.loop()

		w.Release()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	}
}

func TestWatchInterrupts(t *testing.T) {
	ctx, w := watchInterrupts(context.Background(), syscall.SIGUSR1)
	w.Release()
	assert.NoError(t, ctx.Err())
	w.Stop()
}
