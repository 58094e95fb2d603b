package ai

import "context"

// AnswerKeyKindURL and AnswerKeyKindText identify how the answer key is
// supplied to the grader.
const (
	AnswerKeyKindURL  = "url"
	AnswerKeyKindText = "text"
)

// AnswerKey is the rubric a submission is graded against, either a link to an
// externally hosted document or inline text.
type AnswerKey struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// GradeRequest carries everything needed to grade one submission. It is a
// snapshot fixed at dispatch time; callers must not reuse it across key
// changes.
type GradeRequest struct {
	CourseID        string
	CourseName      string
	AssignmentID    string
	AssignmentTitle string
	SubmissionID    string
	StudentName     string
	AnswerKey       AnswerKey
}

// GradeOutcome is the structured result returned by the AI grader.
type GradeOutcome struct {
	AssignedGrade int    `json:"assigned_grade"`
	Feedback      string `json:"feedback"`
	Justification string `json:"justification"`
}

// Grader describes an AI model capable of grading a submission against an
// answer key.
type Grader interface {
	Grade(ctx context.Context, req GradeRequest) (GradeOutcome, error)
}

// KeyGenerator produces and iteratively refines answer keys for assignments
// that have none.
type KeyGenerator interface {
	GenerateInitialKey(ctx context.Context, assignmentTitle, assignmentDescription string) (string, error)
	RefineKey(ctx context.Context, currentKey, feedback string) (string, error)
}
