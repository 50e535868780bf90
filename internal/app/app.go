package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-timer/internal/alert"
	"github.com/stemsi/exstem-timer/internal/export"
	"github.com/stemsi/exstem-timer/internal/model"
	"github.com/stemsi/exstem-timer/internal/service"
	"github.com/stemsi/exstem-timer/internal/ui"
	"github.com/stemsi/exstem-timer/internal/validator"
	"github.com/stemsi/exstem-timer/internal/worker"
)

const maxPendingDigits = 3

// Options controls how a run starts.
type Options struct {
	// Defaults pre-fill the setup form.
	Defaults model.SetupRequest
	// Greeting is optional copy shown on the countdown and finished
	// screens, usually taken from a preset.
	Greeting string
	// SkipForm starts the countdown immediately from Defaults.
	SkipForm bool
	// AutoExport writes the CSV recap as soon as the exam finishes.
	AutoExport bool
}

// App is the single-actor event loop. All session state is owned by this
// one goroutine; the key reader and the ticker worker only feed events
// into it, so the service layer needs no locks.
type App struct {
	clock    clockwork.Clock
	svc      *service.SessionService
	screen   *ui.Screen
	exporter *export.Exporter
	log      zerolog.Logger
	opts     Options

	keys   chan ui.Key
	reader *ui.Reader

	// ticks belongs to the live ticker generation; nil while no timed
	// phase runs. reconcileTicker swaps in a fresh channel with every
	// generation, so a cancelled worker's pending tick has no receiver
	// and can never arrive after the phase changed.
	ticks chan time.Time

	runCtx      context.Context
	tickCancel  context.CancelFunc
	tickerPhase model.Phase

	form        *ui.Form
	lastReq     model.SetupRequest
	pending     string
	alert       *alert.Alert
	wasChecking bool
}

// New assembles the application loop around its collaborators.
func New(clock clockwork.Clock, svc *service.SessionService,
	exporter *export.Exporter, screen *ui.Screen, log zerolog.Logger, opts Options) *App {

	keys := make(chan ui.Key)
	a := &App{
		clock:    clock,
		svc:      svc,
		screen:   screen,
		exporter: exporter,
		log:      log.With().Str("component", "app").Logger(),
		opts:     opts,
		keys:     keys,
		reader:   ui.NewReader(keys, log),
		lastReq:  opts.Defaults,
	}
	a.form = ui.NewForm(a.lastReq)
	return a
}

// Run drives the loop until the proctor quits or a signal arrives.
// The terminal is switched to raw mode for the whole run; every return
// path restores it.
func (a *App) Run(ctx context.Context) error {
	if a.opts.SkipForm {
		if errs := validator.Check(&a.opts.Defaults); errs != nil {
			return fmt.Errorf("invalid session settings: %v", errs)
		}
	}

	if err := a.reader.MakeRaw(); err != nil {
		return err
	}
	defer a.reader.Restore()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.runCtx = runCtx

	go a.reader.Start(runCtx)

	// Ctrl+C arrives as a key in raw mode; the signal channel covers
	// SIGTERM and signals sent from outside the terminal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if a.opts.SkipForm {
		a.beginSession(&a.opts.Defaults)
	}
	a.reconcileTicker()

	for {
		a.render()

		select {
		case <-ctx.Done():
			a.shutdown("context cancelled")
			return nil
		case sig := <-quit:
			a.shutdown(sig.String())
			return nil
		case k := <-a.keys:
			if a.handleKey(k) {
				a.shutdown("quit key")
				return nil
			}
		case t := <-a.ticks:
			// Never ready while ticks is nil (untimed phase).
			a.handleTick(t)
		}

		a.reconcileTicker()
	}
}

func (a *App) shutdown(reason string) {
	a.log.Info().Str("reason", reason).Msg("Shutting down gracefully...")
	a.stopTicker()
	a.log.Info().Msg("Shutdown complete")
}

// ─── Event handling ─────────────────────────────────────────────────────────

// handleKey routes one keypress by phase. It returns true when the
// application should quit.
func (a *App) handleKey(k ui.Key) bool {
	if k.Kind == ui.KeyCtrlC {
		return true
	}

	phase := a.svc.Snapshot().Phase
	a.alert = nil

	switch phase {
	case model.PhaseSetup:
		a.handleSetupKey(k)
	case model.PhaseCountdown:
		if k.Kind == ui.KeyRune && k.Rune == 'q' {
			return true
		}
	case model.PhaseExam:
		return a.handleExamKey(k)
	case model.PhaseFinished:
		return a.handleFinishedKey(k)
	}
	return false
}

func (a *App) handleSetupKey(k ui.Key) {
	if done := a.form.Feed(k); done {
		a.beginSession(a.form.Request())
		return
	}
	if errs := a.form.Errors(); len(errs) > 0 {
		a.alert = alert.FailWithFields(alert.ErrValidation, errs)
	}
}

func (a *App) handleExamKey(k ui.Key) bool {
	switch k.Kind {
	case ui.KeyDigit:
		if len(a.pending) < maxPendingDigits {
			a.pending += string(k.Rune)
		}
	case ui.KeyBackspace:
		if len(a.pending) > 0 {
			a.pending = a.pending[:len(a.pending)-1]
		}
	case ui.KeyEsc:
		a.pending = ""
	case ui.KeyEnter:
		a.commitPending()
	case ui.KeySpace:
		a.pending = ""
		if err := a.svc.Deactivate(); err != nil {
			a.alertFor(err)
		}
	case ui.KeyLeft:
		a.stepActive(-1)
	case ui.KeyRight:
		a.stepActive(+1)
	case ui.KeyRune:
		switch k.Rune {
		case 'q':
			return true
		case 'p':
			a.stepActive(-1)
		case 'n':
			a.stepActive(+1)
		case 'f':
			if err := a.svc.Finish(); err != nil {
				a.alertFor(err)
			} else {
				a.onFinished()
			}
		case 's':
			a.exportRecap()
		}
	}
	return false
}

func (a *App) handleFinishedKey(k ui.Key) bool {
	if k.Kind != ui.KeyRune {
		return false
	}
	switch k.Rune {
	case 'q':
		return true
	case 's':
		a.exportRecap()
	case 'r':
		if err := a.svc.Reset(); err != nil {
			a.alertFor(err)
			return false
		}
		a.form = ui.NewForm(a.lastReq)
		a.pending = ""
		a.wasChecking = false
		a.alert = alert.Notice(alert.NoticeSessionReset)
	}
	return false
}

// handleTick forwards the tick and announces transitions it caused.
func (a *App) handleTick(time.Time) {
	before := a.svc.Snapshot()
	a.svc.Tick()
	after := a.svc.Snapshot()

	if before.Phase == model.PhaseExam && after.Phase == model.PhaseFinished {
		a.onFinished()
		return
	}
	if after.Phase == model.PhaseExam && after.InChecking && !a.wasChecking {
		a.wasChecking = true
		a.alert = alert.Notice(alert.NoticeChecking)
	}
}

// ─── Actions ────────────────────────────────────────────────────────────────

func (a *App) beginSession(req *model.SetupRequest) {
	if err := a.svc.Begin(req); err != nil {
		a.alertFor(err)
		return
	}
	a.lastReq = *req
	a.pending = ""
	a.alert = nil
	a.wasChecking = false
}

// commitPending activates the question number typed so far.
func (a *App) commitPending() {
	if a.pending == "" {
		return
	}
	n, err := strconv.Atoi(a.pending)
	a.pending = ""
	if err != nil {
		return
	}
	if err := a.svc.Activate(n); err != nil {
		a.alertFor(err)
	}
}

// stepActive moves the active question by delta, clamped to the sheet.
// With no active question either direction lands on question 1.
func (a *App) stepActive(delta int) {
	snap := a.svc.Snapshot()
	next := snap.ActiveQuestion + delta
	if snap.ActiveQuestion == 0 {
		next = 1
	}
	if next < 1 {
		next = 1
	}
	if next > snap.NumQuestions {
		next = snap.NumQuestions
	}
	if err := a.svc.Activate(next); err != nil {
		a.alertFor(err)
	}
}

func (a *App) onFinished() {
	a.alert = alert.Notice(alert.NoticeExamFinished)
	if a.opts.AutoExport {
		a.exportRecap()
	}
}

func (a *App) exportRecap() {
	path, err := a.exporter.WriteCSV(a.svc.Session())
	if err != nil {
		a.log.Error().Err(err).Msg("Export failed")
		if errors.Is(err, export.ErrNothingToExport) {
			a.alert = alert.Fail(alert.ErrNothingToSave)
		} else {
			a.alert = alert.Fail(alert.ErrExportFailed)
		}
		return
	}
	a.alert = alert.NoticeWithDetail(alert.NoticeExported, path)
}

// alertFor maps service errors onto user-facing alerts.
func (a *App) alertFor(err error) {
	switch {
	case errors.Is(err, service.ErrNoSuchQuestion):
		a.alert = alert.Fail(alert.ErrNoSuchQuestion)
	case errors.Is(err, service.ErrWrongPhase):
		a.alert = alert.Fail(alert.ErrWrongPhase)
	default:
		a.log.Error().Err(err).Msg("Unexpected session error")
		a.alert = &alert.Alert{Error: true, Message: alert.GetMessage("")}
	}
}

// ─── Ticker lifecycle ───────────────────────────────────────────────────────

// reconcileTicker keeps exactly one ticker worker alive per timed phase.
// Entering COUNTDOWN or EXAM starts a fresh worker on a fresh channel;
// leaving stops it. The old generation's channel is abandoned along with
// its worker, so no tick from a previous phase leaks into the next.
func (a *App) reconcileTicker() {
	phase := a.svc.Snapshot().Phase
	timed := phase == model.PhaseCountdown || phase == model.PhaseExam

	if !timed {
		a.stopTicker()
		return
	}
	if phase == a.tickerPhase {
		return
	}

	a.stopTicker()
	tickCtx, cancel := context.WithCancel(a.runCtx)
	a.tickCancel = cancel
	a.tickerPhase = phase
	a.ticks = make(chan time.Time)

	w := worker.NewTickerWorker(a.clock, a.ticks, a.log)
	go w.Start(tickCtx)
}

func (a *App) stopTicker() {
	if a.tickCancel != nil {
		a.tickCancel()
		a.tickCancel = nil
	}
	a.tickerPhase = ""
	a.ticks = nil
}

// ─── Rendering ──────────────────────────────────────────────────────────────

func (a *App) render() {
	v := ui.View{
		Snap:     a.svc.Snapshot(),
		Greeting: a.opts.Greeting,
		Pending:  a.pending,
		Alert:    a.alert,
	}
	if v.Snap.Phase == model.PhaseSetup {
		v.Form = a.form
	}
	a.screen.Render(v)
}
