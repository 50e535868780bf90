package validator

import (
	"strings"
	"testing"

	"github.com/stemsi/exstem-timer/internal/model"
)

func TestCheckSetupRequest(t *testing.T) {
	Setup()

	tests := []struct {
		name       string
		req        model.SetupRequest
		wantFields []string
	}{
		{
			name: "valid request",
			req:  model.SetupRequest{StudentName: "Dewi", NumQuestions: 40, TotalMinutes: 90},
		},
		{
			name: "name is optional",
			req:  model.SetupRequest{NumQuestions: 1, TotalMinutes: 1},
		},
		{
			name:       "zero questions",
			req:        model.SetupRequest{NumQuestions: 0, TotalMinutes: 90},
			wantFields: []string{"num_questions"},
		},
		{
			name:       "zero minutes",
			req:        model.SetupRequest{NumQuestions: 40, TotalMinutes: 0},
			wantFields: []string{"total_minutes"},
		},
		{
			name:       "both below minimum",
			req:        model.SetupRequest{NumQuestions: 0, TotalMinutes: 0},
			wantFields: []string{"num_questions", "total_minutes"},
		},
		{
			name:       "too many questions",
			req:        model.SetupRequest{NumQuestions: 301, TotalMinutes: 90},
			wantFields: []string{"num_questions"},
		},
		{
			name:       "duration over eight hours",
			req:        model.SetupRequest{NumQuestions: 40, TotalMinutes: 481},
			wantFields: []string{"total_minutes"},
		},
		{
			name:       "student name too long",
			req:        model.SetupRequest{StudentName: strings.Repeat("a", 101), NumQuestions: 40, TotalMinutes: 90},
			wantFields: []string{"student_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Check(&tt.req)

			if len(tt.wantFields) == 0 {
				if fields != nil {
					t.Fatalf("Check() = %v, want nil", fields)
				}
				return
			}

			if len(fields) != len(tt.wantFields) {
				t.Fatalf("Check() = %v, want errors on %v", fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if msg, ok := fields[f]; !ok || msg == "" {
					t.Errorf("Check() missing message for field %q, got %v", f, fields)
				}
			}
		})
	}
}
