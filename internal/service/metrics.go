package service

import "fmt"

// WarnLevel grades how far the active question has run past the
// per-question average.
type WarnLevel string

const (
	WarnNone   WarnLevel = "NONE"
	WarnMedium WarnLevel = "MEDIUM"
	WarnHigh   WarnLevel = "HIGH"
)

// Warning thresholds as multiples of the per-question average.
const (
	warnMediumRatio = 2.0
	warnHighRatio   = 2.8
)

// SplitAnsweringChecking divides the total exam seconds into the
// answering window (first 95%, integer floor) and the checking window
// (whatever remains, reserved for review).
func SplitAnsweringChecking(totalSeconds int) (answering, checking int) {
	if totalSeconds <= 0 {
		return 0, 0
	}
	answering = totalSeconds * 95 / 100
	return answering, totalSeconds - answering
}

// AvgPerQuestion is the per-question time budget: the answering window
// divided by the question count, rounded up. Zero when either input
// offers nothing to divide.
func AvgPerQuestion(answeringSeconds, numQuestions int) int {
	if answeringSeconds <= 0 || numQuestions <= 0 {
		return 0
	}
	return (answeringSeconds + numQuestions - 1) / numQuestions
}

// WarningFor grades the active question's accumulated seconds against the
// per-question average: ratio ≥ 2.8 is HIGH, ≥ 2.0 MEDIUM, otherwise NONE.
func WarningFor(activeSeconds, avgSeconds int) WarnLevel {
	if avgSeconds <= 0 {
		return WarnNone
	}
	ratio := float64(activeSeconds) / float64(avgSeconds)
	switch {
	case ratio >= warnHighRatio:
		return WarnHigh
	case ratio >= warnMediumRatio:
		return WarnMedium
	default:
		return WarnNone
	}
}

// FormatHMS renders a second count as m:ss, or h:mm:ss from one hour up.
// Negative input clamps to "0:00".
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
