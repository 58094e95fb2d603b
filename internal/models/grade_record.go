package models

import "time"

// GradeRecord is one persisted grading outcome, used as analytics input.
// Records are append only; a re-grade appends a new record rather than
// rewriting an old one.
type GradeRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CourseID        string    `gorm:"size:64;index;not null" json:"course_id"`
	CourseName      string    `gorm:"size:255" json:"course_name"`
	AssignmentID    string    `gorm:"size:64;index;not null" json:"assignment_id"`
	AssignmentTitle string    `gorm:"size:255" json:"assignment_title"`
	SubmissionID    string    `gorm:"size:64;not null" json:"submission_id"`
	StudentName     string    `gorm:"size:255;index" json:"student_name"`
	AssignedGrade   int       `gorm:"not null" json:"assigned_grade"`
	Feedback        string    `gorm:"type:text" json:"feedback"`
	Justification   string    `gorm:"type:text" json:"justification"`
	GradedAt        time.Time `gorm:"index;not null" json:"graded_at"`
	CreatedAt       time.Time `json:"created_at"`
}
