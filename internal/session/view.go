package session

import (
	"time"

	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// SubmissionView pairs a submission with its latest grading result, if any.
type SubmissionView struct {
	classroom.Submission
	Result *GradingResult `json:"result,omitempty"`
}

// View is a read-only snapshot of the session exposed to presentational
// callers. It is detached from the live state; holding one does not block
// grading.
type View struct {
	ID              string           `json:"id"`
	CourseID        string           `json:"course_id"`
	CourseName      string           `json:"course_name"`
	AssignmentID    string           `json:"assignment_id"`
	AssignmentTitle string           `json:"assignment_title"`
	CreatedAt       time.Time        `json:"created_at"`
	AnswerKey       AnswerKeySource  `json:"answer_key"`
	CanGrade        bool             `json:"can_grade"`
	BatchRunning    bool             `json:"batch_running"`
	PendingCount    int              `json:"pending_count"`
	Submissions     []SubmissionView `json:"submissions"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	submissions := make([]SubmissionView, 0, len(s.submissions))
	for _, submission := range s.submissions {
		view := SubmissionView{Submission: submission}
		if result, ok := s.results[submission.ID]; ok {
			copied := result
			view.Result = &copied
		}
		submissions = append(submissions, view)
	}

	return View{
		ID:              s.id,
		CourseID:        s.courseID,
		CourseName:      s.courseName,
		AssignmentID:    s.assignmentID,
		AssignmentTitle: s.assignmentTitle,
		CreatedAt:       s.createdAt,
		AnswerKey:       s.keySource,
		CanGrade:        s.keySource.Ready(),
		BatchRunning:    s.batchRunning,
		PendingCount:    len(s.pending),
		Submissions:     submissions,
	}
}
