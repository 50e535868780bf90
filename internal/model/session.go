package model

import (
	"time"

	"github.com/google/uuid"
)

// Phase enumerates timer session states.
type Phase string

const (
	PhaseSetup     Phase = "SETUP"
	PhaseCountdown Phase = "COUNTDOWN"
	PhaseExam      Phase = "EXAM"
	PhaseFinished  Phase = "FINISHED"
)

// Session represents one self-administered exam sitting.
// Fields are mutated only by the session service; the presentation layer
// consumes read-only snapshots instead.
type Session struct {
	ID            uuid.UUID  `json:"id"`
	StudentName   string     `json:"student_name"`
	NumQuestions  int        `json:"num_questions"`
	TotalSeconds  int        `json:"total_seconds"`
	Phase         Phase      `json:"phase"`
	CountdownLeft int        `json:"countdown_left"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`

	// ElapsedSeconds is recomputed from StartedAt on every tick, so a
	// stalled ticker cannot make the session drift from wall time.
	ElapsedSeconds int `json:"elapsed_seconds"`

	// QuestionSeconds holds one accumulated counter per question
	// (index 0 = question 1). Entries only grow, except via Reset.
	QuestionSeconds []int `json:"question_seconds"`

	// Visited records the question numbers that have ever been active.
	Visited map[int]bool `json:"visited"`

	// Active is the 1-based number of the currently timed question,
	// 0 when no question is active. Unattributed time is legal: the sum
	// of QuestionSeconds can lag ElapsedSeconds.
	Active int `json:"active"`
}
