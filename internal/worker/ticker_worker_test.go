package worker

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// startTestWorker runs a worker against a fake clock and waits until its
// ticker is registered, so Advance calls always reach it.
func startTestWorker(t *testing.T) (*clockwork.FakeClock, chan time.Time, context.CancelFunc, chan struct{}) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	out := make(chan time.Time)
	w := NewTickerWorker(fc, out, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	fc.BlockUntil(1)
	return fc, out, cancel, done
}

func waitStopped(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker kept running after cancel")
	}
}

func TestTickerWorkerForwardsTicks(t *testing.T) {
	fc, out, cancel, done := startTestWorker(t)
	defer cancel()

	for i := 0; i < 3; i++ {
		fc.Advance(TickInterval)
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatalf("tick %d was not forwarded", i+1)
		}
	}

	cancel()
	waitStopped(t, done)
}

func TestTickerWorkerStopsOnCancel(t *testing.T) {
	t.Run("while waiting for the next tick", func(t *testing.T) {
		_, _, cancel, done := startTestWorker(t)

		cancel()
		waitStopped(t, done)
	})

	t.Run("while a tick is pending with no receiver", func(t *testing.T) {
		fc, _, cancel, done := startTestWorker(t)

		// Nobody reads out, so the forwarding send cannot complete.
		// Cancellation must win over the blocked send.
		fc.Advance(TickInterval)
		cancel()
		waitStopped(t, done)
	})
}
