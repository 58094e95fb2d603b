package dto

// GenerateKeyRequest asks the AI to draft an initial answer key for an
// assignment that has none.
type GenerateKeyRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	AssignmentID string `json:"assignment_id" validate:"required"`
}

// RefineKeyRequest asks the AI to revise a draft key using instructor
// feedback.
type RefineKeyRequest struct {
	CurrentKey string `json:"current_key" validate:"required"`
	Feedback   string `json:"feedback" validate:"required"`
}

// AnswerKeyResponse carries the generated or refined answer key text.
type AnswerKeyResponse struct {
	AnswerKey string `json:"answer_key"`
}
