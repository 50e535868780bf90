package ui

import (
	"strconv"
	"strings"

	"github.com/stemsi/exstem-timer/internal/model"
	"github.com/stemsi/exstem-timer/internal/validator"
)

// FormField indexes the setup prompts in order.
type FormField int

const (
	FieldName FormField = iota
	FieldQuestions
	FieldMinutes
)

const maxFieldRunes = 120

// Form collects the setup request one field at a time. An empty entry
// takes the field's default, so a proctor reusing yesterday's settings
// walks through with three Enter presses.
type Form struct {
	defaults model.SetupRequest
	field    FormField
	buf      []rune
	req      model.SetupRequest
	errs     map[string]string
	parseErr string
	done     bool
}

// NewForm creates a form pre-filled with the given defaults.
func NewForm(defaults model.SetupRequest) *Form {
	return &Form{defaults: defaults}
}

// Feed applies one keypress and reports whether the form is complete.
func (f *Form) Feed(k Key) bool {
	if f.done {
		return true
	}

	switch k.Kind {
	case KeyRune, KeyDigit:
		if len(f.buf) < maxFieldRunes {
			f.buf = append(f.buf, k.Rune)
		}
	case KeySpace:
		// Only a name can contain spaces.
		if f.field == FieldName && len(f.buf) < maxFieldRunes {
			f.buf = append(f.buf, ' ')
		}
	case KeyBackspace:
		if len(f.buf) > 0 {
			f.buf = f.buf[:len(f.buf)-1]
		}
	case KeyEsc:
		f.buf = f.buf[:0]
	case KeyEnter:
		f.commit()
	}
	return f.done
}

// commit parses the current field and advances. The last field triggers
// validation; failures send the form back to the first prompt with the
// entered values as the new defaults.
func (f *Form) commit() {
	value := strings.TrimSpace(string(f.buf))
	f.parseErr = ""

	switch f.field {
	case FieldName:
		if value == "" {
			value = f.defaults.StudentName
		}
		f.req.StudentName = value
		f.buf = f.buf[:0]
		f.field = FieldQuestions

	case FieldQuestions:
		n, ok := f.parseInt(value, f.defaults.NumQuestions)
		if !ok {
			return
		}
		f.req.NumQuestions = n
		f.buf = f.buf[:0]
		f.field = FieldMinutes

	case FieldMinutes:
		n, ok := f.parseInt(value, f.defaults.TotalMinutes)
		if !ok {
			return
		}
		f.req.TotalMinutes = n
		f.buf = f.buf[:0]

		if errs := validator.Check(&f.req); errs != nil {
			f.errs = errs
			f.defaults = f.req
			f.field = FieldName
			return
		}
		f.errs = nil
		f.done = true
	}
}

func (f *Form) parseInt(value string, fallback int) (int, bool) {
	if value == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		f.parseErr = "Masukan harus berupa angka."
		f.buf = f.buf[:0]
		return 0, false
	}
	return n, true
}

// Request returns the collected setup request once Feed reported done.
func (f *Form) Request() *model.SetupRequest {
	req := f.req
	return &req
}

// Field reports which prompt is currently active.
func (f *Form) Field() FormField { return f.field }

// Buffer returns the characters typed into the active prompt so far.
func (f *Form) Buffer() string { return string(f.buf) }

// Value returns the committed value for a field, or its default while
// the field has not been entered yet.
func (f *Form) Value(field FormField) string {
	switch field {
	case FieldName:
		if f.field > FieldName {
			return f.req.StudentName
		}
		return f.defaults.StudentName
	case FieldQuestions:
		if f.field > FieldQuestions {
			return strconv.Itoa(f.req.NumQuestions)
		}
		return strconv.Itoa(f.defaults.NumQuestions)
	default:
		return strconv.Itoa(f.defaults.TotalMinutes)
	}
}

// Errors returns field-level validation messages from the last submit.
func (f *Form) Errors() map[string]string { return f.errs }

// ParseError returns the message for a non-numeric entry, if any.
func (f *Form) ParseError() string { return f.parseErr }
