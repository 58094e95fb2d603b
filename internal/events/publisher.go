package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// GradingEvent describes one settled grading attempt.
type GradingEvent struct {
	SessionID     string    `json:"session_id"`
	CourseID      string    `json:"course_id"`
	AssignmentID  string    `json:"assignment_id"`
	SubmissionID  string    `json:"submission_id"`
	StudentName   string    `json:"student_name"`
	State         string    `json:"state"`
	AssignedGrade int       `json:"assigned_grade,omitempty"`
	Error         string    `json:"error,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher fans grading events out over NATS so other services (digests,
// notifications) can react without polling. A nil Publisher is valid and
// publishes nothing.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublisher constructs a publisher bound to the given subject base.
func NewPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) *Publisher {
	if subjectBase == "" {
		subjectBase = "gradeflow"
	}

	return &Publisher{
		conn:    conn,
		subject: subjectBase + ".grading",
		logger:  logger.With().Str("component", "events").Logger(),
	}
}

// GradingSettled publishes one settled grading attempt. Publish failures are
// logged and dropped; event delivery never affects grading outcomes.
func (p *Publisher) GradingSettled(ctx context.Context, event GradingEvent) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("submission_id", event.SubmissionID).Msg("failed to encode grading event")
		return
	}

	subject := p.subject + "." + event.State
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish grading event")
	}
}
