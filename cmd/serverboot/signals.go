package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// interruptWatcher cancels a context on termination signals until the server
// takes over the process.
type interruptWatcher struct {
	signals chan os.Signal
	cancel  context.CancelFunc
	release chan struct{}
	exited  chan struct{}
	once    sync.Once
}

func watchInterrupts(parent context.Context, sigs ...os.Signal) (context.Context, *interruptWatcher) {
	ctx, w := newInterruptWatcher(parent)
	signal.Notify(w.signals, sigs...)
	go w.loop()
	return ctx, w
}

func newInterruptWatcher(parent context.Context) (context.Context, *interruptWatcher) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &interruptWatcher{
		signals: make(chan os.Signal, 1),
		cancel:  cancel,
		release: make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

func (w *interruptWatcher) loop() {
	defer close(w.exited)
	select {
	case <-w.signals:
		w.cancel()
	case <-w.release:
	}
}

// Release stops watching. A signal delivered before Release still cancels
// the context; later ones get their default disposition. Safe to call more
// than once.
func (w *interruptWatcher) Release() {
	w.once.Do(func() {
		signal.Stop(w.signals)
		close(w.release)
		<-w.exited

		select {
		case <-w.signals:
			w.cancel()
		default:
		}
	})
}

// Stop releases the watcher and cancels its context
func (w *interruptWatcher) Stop() {
	w.Release()
	w.cancel()
}
