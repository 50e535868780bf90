package model

// SetupRequest is the payload collected by the setup form before a
// session may start.
type SetupRequest struct {
	StudentName  string `json:"student_name" validate:"omitempty,max=100"`
	NumQuestions int    `json:"num_questions" validate:"required,min=1,max=300"`
	TotalMinutes int    `json:"total_minutes" validate:"required,min=1,max=480"`
}
