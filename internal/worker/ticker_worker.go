package worker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// TickInterval is the period of the accrual tick. The whole state machine
// is specified in one-second steps.
const TickInterval = time.Second

// TickerWorker owns the periodic callback for one timed phase. The app
// loop starts a fresh worker when it enters COUNTDOWN and again when it
// enters EXAM, and cancels the worker's context on phase exit, so there
// is exactly one active timer at a time.
type TickerWorker struct {
	clock clockwork.Clock
	out   chan<- time.Time
	log   zerolog.Logger
}

// NewTickerWorker creates a TickerWorker emitting ticks into out.
func NewTickerWorker(clock clockwork.Clock, out chan<- time.Time, log zerolog.Logger) *TickerWorker {
	return &TickerWorker{
		clock: clock,
		out:   out,
		log:   log.With().Str("component", "ticker_worker").Logger(),
	}
}

// Start begins the tick loop. Call in a goroutine; returns when ctx is
// cancelled. Ticks are delivered with back-pressure: if the app loop is
// mid-render the send simply waits, it never drops or doubles a tick.
func (w *TickerWorker) Start(ctx context.Context) {
	ticker := w.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	w.log.Debug().Msg("Ticker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Msg("Ticker stopped")
			return
		case t := <-ticker.Chan():
			select {
			case w.out <- t:
			case <-ctx.Done():
				w.log.Debug().Msg("Ticker stopped")
				return
			}
		}
	}
}
