package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-timer/internal/model"
)

// Sentinel errors returned by session operations. The app layer maps
// these onto user-facing alert codes.
var (
	ErrWrongPhase     = errors.New("operation not allowed in this phase")
	ErrNoSuchQuestion = errors.New("question number out of range")
)

// SessionService owns the timer state machine: phase, per-question
// accumulators, visited set and timestamps. It is written for a single
// driving goroutine (the app loop issues every tick and every command),
// so it holds no locks. Time is read from the injected clock only.
type SessionService struct {
	clock          clockwork.Clock
	log            zerolog.Logger
	countdownTicks int
	sess           *model.Session
}

// NewSessionService creates a SessionService in the SETUP phase.
// countdownTicks is the length of the countdown in one-second ticks.
func NewSessionService(clock clockwork.Clock, countdownTicks int, log zerolog.Logger) *SessionService {
	if countdownTicks < 1 {
		countdownTicks = 1
	}
	return &SessionService{
		clock:          clock,
		log:            log.With().Str("component", "session_service").Logger(),
		countdownTicks: countdownTicks,
		sess:           &model.Session{Phase: model.PhaseSetup},
	}
}

// Begin moves SETUP → COUNTDOWN with a validated setup request and a
// fresh session identity. All counters start at zero.
func (s *SessionService) Begin(req *model.SetupRequest) error {
	if s.sess.Phase != model.PhaseSetup {
		return ErrWrongPhase
	}
	// The form validates the request; re-check the two invariants the
	// state machine cannot operate without.
	if req == nil || req.NumQuestions < 1 || req.TotalMinutes < 1 {
		return errors.New("setup request incomplete")
	}

	s.sess = &model.Session{
		ID:              uuid.New(),
		StudentName:     req.StudentName,
		NumQuestions:    req.NumQuestions,
		TotalSeconds:    req.TotalMinutes * 60,
		Phase:           model.PhaseCountdown,
		CountdownLeft:   s.countdownTicks,
		QuestionSeconds: make([]int, req.NumQuestions),
		Visited:         make(map[int]bool, req.NumQuestions),
	}

	s.log.Info().
		Str("session_id", s.sess.ID.String()).
		Int("num_questions", s.sess.NumQuestions).
		Int("total_seconds", s.sess.TotalSeconds).
		Msg("Session started, counting down")
	return nil
}

// Tick advances the machine by one periodic callback. During COUNTDOWN it
// burns one tick and starts the exam at zero; during EXAM it attributes
// one second to the active question (no-op when none is active),
// recomputes elapsed time from the exam start and auto-finishes once
// elapsed reaches the total. In SETUP and FINISHED it does nothing.
func (s *SessionService) Tick() {
	switch s.sess.Phase {
	case model.PhaseCountdown:
		s.sess.CountdownLeft--
		if s.sess.CountdownLeft <= 0 {
			s.sess.CountdownLeft = 0
			s.startExam()
		}
	case model.PhaseExam:
		if q := s.sess.Active; q != 0 {
			s.sess.QuestionSeconds[q-1]++
		}
		s.sess.ElapsedSeconds = s.elapsedNow()
		if s.sess.ElapsedSeconds >= s.sess.TotalSeconds {
			s.finish(true)
		}
	}
}

func (s *SessionService) startExam() {
	s.sess.Phase = model.PhaseExam
	s.sess.StartedAt = s.clock.Now()
	s.sess.ElapsedSeconds = 0
	s.log.Info().
		Str("session_id", s.sess.ID.String()).
		Time("started_at", s.sess.StartedAt).
		Msg("Exam phase entered")
}

// Activate makes question n (1-based) the active one and records the
// visit. Only legal during EXAM.
func (s *SessionService) Activate(n int) error {
	if s.sess.Phase != model.PhaseExam {
		return ErrWrongPhase
	}
	if n < 1 || n > s.sess.NumQuestions {
		return ErrNoSuchQuestion
	}
	s.sess.Active = n
	s.sess.Visited[n] = true
	return nil
}

// Deactivate stops attributing time to any question. Elapsed time keeps
// running; the difference is the unattributed share.
func (s *SessionService) Deactivate() error {
	if s.sess.Phase != model.PhaseExam {
		return ErrWrongPhase
	}
	s.sess.Active = 0
	return nil
}

// Finish ends the exam manually before the time is up.
func (s *SessionService) Finish() error {
	if s.sess.Phase != model.PhaseExam {
		return ErrWrongPhase
	}
	s.sess.ElapsedSeconds = s.elapsedNow()
	s.finish(false)
	return nil
}

// Reset returns a FINISHED session to SETUP, dropping every counter.
// All other transitions are one-way edges.
func (s *SessionService) Reset() error {
	if s.sess.Phase != model.PhaseFinished {
		return ErrWrongPhase
	}
	old := s.sess.ID
	s.sess = &model.Session{Phase: model.PhaseSetup}
	s.log.Info().Str("session_id", old.String()).Msg("Session reset")
	return nil
}

func (s *SessionService) finish(auto bool) {
	now := s.clock.Now()
	s.sess.Phase = model.PhaseFinished
	s.sess.FinishedAt = &now
	s.sess.Active = 0
	if s.sess.ElapsedSeconds > s.sess.TotalSeconds {
		s.sess.ElapsedSeconds = s.sess.TotalSeconds
	}
	s.log.Info().
		Str("session_id", s.sess.ID.String()).
		Bool("auto", auto).
		Int("elapsed_seconds", s.sess.ElapsedSeconds).
		Msg("Session finished")
}

// elapsedNow derives elapsed whole seconds from the exam start.
func (s *SessionService) elapsedNow() int {
	return int(s.clock.Now().Sub(s.sess.StartedAt) / time.Second)
}

// Session exposes the owned session for export and logging. Callers must
// not mutate it; the UI should use Snapshot.
func (s *SessionService) Session() *model.Session {
	return s.sess
}

// Snapshot is the read-only projection the presentation layer renders
// from: raw counters plus every derived metric.
type Snapshot struct {
	Phase            model.Phase `json:"phase"`
	StudentName      string      `json:"student_name"`
	NumQuestions     int         `json:"num_questions"`
	TotalSeconds     int         `json:"total_seconds"`
	CountdownLeft    int         `json:"countdown_left"`
	ElapsedSeconds   int         `json:"elapsed_seconds"`
	RemainingSeconds int         `json:"remaining_seconds"`
	AnsweringSeconds int         `json:"answering_seconds"`
	CheckingSeconds  int         `json:"checking_seconds"`
	AvgPerQuestion   int         `json:"avg_per_question"`
	ActiveQuestion   int         `json:"active_question"` // 1-based, 0 = none
	ActiveSeconds    int         `json:"active_seconds"`
	Warning          WarnLevel   `json:"warning"`
	InChecking       bool        `json:"in_checking"`
	QuestionSeconds  []int       `json:"question_seconds"`
	Visited          []bool      `json:"visited"` // index i = question i+1
}

// Snapshot projects the current session state. It never mutates and is
// valid in every phase.
func (s *SessionService) Snapshot() Snapshot {
	sess := s.sess

	answering, checking := SplitAnsweringChecking(sess.TotalSeconds)
	avg := AvgPerQuestion(answering, sess.NumQuestions)

	remaining := sess.TotalSeconds - sess.ElapsedSeconds
	if remaining < 0 {
		remaining = 0
	}

	snap := Snapshot{
		Phase:            sess.Phase,
		StudentName:      sess.StudentName,
		NumQuestions:     sess.NumQuestions,
		TotalSeconds:     sess.TotalSeconds,
		CountdownLeft:    sess.CountdownLeft,
		ElapsedSeconds:   sess.ElapsedSeconds,
		RemainingSeconds: remaining,
		AnsweringSeconds: answering,
		CheckingSeconds:  checking,
		AvgPerQuestion:   avg,
		ActiveQuestion:   sess.Active,
		Warning:          WarnNone,
		InChecking:       sess.Phase == model.PhaseExam && sess.ElapsedSeconds >= answering,
		QuestionSeconds:  append([]int(nil), sess.QuestionSeconds...),
		Visited:          make([]bool, sess.NumQuestions),
	}
	for n := range snap.Visited {
		snap.Visited[n] = sess.Visited[n+1]
	}
	if sess.Active != 0 {
		snap.ActiveSeconds = sess.QuestionSeconds[sess.Active-1]
		snap.Warning = WarningFor(snap.ActiveSeconds, avg)
	}
	return snap
}
