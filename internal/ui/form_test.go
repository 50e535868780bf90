package ui

import (
	"testing"

	"github.com/stemsi/exstem-timer/internal/model"
)

func typeText(f *Form, text string) bool {
	done := false
	for _, r := range text {
		k := Key{Kind: KeyRune, Rune: r}
		switch {
		case r >= '0' && r <= '9':
			k = Key{Kind: KeyDigit, Rune: r, Digit: int(r - '0')}
		case r == ' ':
			k = Key{Kind: KeySpace}
		case r == '\r':
			k = Key{Kind: KeyEnter}
		}
		done = f.Feed(k)
	}
	return done
}

func TestFormWalkthrough(t *testing.T) {
	t.Run("typed values are collected", func(t *testing.T) {
		f := NewForm(model.SetupRequest{NumQuestions: 40, TotalMinutes: 90})

		if done := typeText(f, "Budi Santoso\r25\r60\r"); !done {
			t.Fatalf("form not done, field = %d, errors = %v", f.Field(), f.Errors())
		}

		req := f.Request()
		if req.StudentName != "Budi Santoso" || req.NumQuestions != 25 || req.TotalMinutes != 60 {
			t.Errorf("Request() = %+v", req)
		}
	})

	t.Run("empty entries fall back to defaults", func(t *testing.T) {
		f := NewForm(model.SetupRequest{StudentName: "Sari", NumQuestions: 40, TotalMinutes: 90})

		if done := typeText(f, "\r\r\r"); !done {
			t.Fatalf("form not done, errors = %v", f.Errors())
		}

		req := f.Request()
		if req.StudentName != "Sari" || req.NumQuestions != 40 || req.TotalMinutes != 90 {
			t.Errorf("Request() = %+v", req)
		}
	})

	t.Run("non-numeric entry keeps the prompt", func(t *testing.T) {
		f := NewForm(model.SetupRequest{NumQuestions: 40, TotalMinutes: 90})

		typeText(f, "\rabc\r")
		if f.Field() != FieldQuestions {
			t.Errorf("field = %d, want FieldQuestions", f.Field())
		}
		if f.ParseError() == "" {
			t.Error("no parse error reported")
		}

		if done := typeText(f, "30\r45\r"); !done {
			t.Fatalf("form not done after recovery, errors = %v", f.Errors())
		}
	})

	t.Run("invalid values bounce back to the first prompt", func(t *testing.T) {
		f := NewForm(model.SetupRequest{NumQuestions: 40, TotalMinutes: 90})

		if done := typeText(f, "\r0\r0\r"); done {
			t.Fatal("form accepted zero questions and zero minutes")
		}
		if f.Field() != FieldName {
			t.Errorf("field = %d, want FieldName after failed validation", f.Field())
		}
		errs := f.Errors()
		if _, ok := errs["num_questions"]; !ok {
			t.Errorf("errors = %v, missing num_questions", errs)
		}
		if _, ok := errs["total_minutes"]; !ok {
			t.Errorf("errors = %v, missing total_minutes", errs)
		}

		// The rejected values became the defaults; the proctor must
		// type corrections, not everything again.
		if done := typeText(f, "\r20\r30\r"); !done {
			t.Fatalf("form not done after correction, errors = %v", f.Errors())
		}
		req := f.Request()
		if req.NumQuestions != 20 || req.TotalMinutes != 30 {
			t.Errorf("Request() = %+v", req)
		}
	})

	t.Run("backspace edits the buffer", func(t *testing.T) {
		f := NewForm(model.SetupRequest{NumQuestions: 40, TotalMinutes: 90})

		typeText(f, "Ani")
		f.Feed(Key{Kind: KeyBackspace})
		if got := f.Buffer(); got != "An" {
			t.Errorf("Buffer() = %q, want %q", got, "An")
		}
		f.Feed(Key{Kind: KeyEsc})
		if got := f.Buffer(); got != "" {
			t.Errorf("Buffer() after Esc = %q, want empty", got)
		}
	})
}
