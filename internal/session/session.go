// Package session owns the state of one assignment's batch grading workflow:
// the submission list, the active answer key source, the per-submission
// results and the set of submissions currently being graded. All mutable
// state is guarded by the session's own mutex; nothing else writes to it.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dteguh/gradeflow-api/internal/events"
	"github.com/dteguh/gradeflow-api/internal/models"
	"github.com/dteguh/gradeflow-api/pkg/ai"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// ErrNoAnswerKey indicates grading was attempted with no usable answer key.
var ErrNoAnswerKey = errors.New("answer key is not set")

// ErrBatchRunning indicates a batch run is already in progress.
var ErrBatchRunning = errors.New("batch grading already in progress")

// ErrUnknownSubmission indicates the submission does not belong to this session.
var ErrUnknownSubmission = errors.New("submission not part of this session")

// ErrNothingToExport indicates no submission has a complete result yet.
var ErrNothingToExport = errors.New("no completed grades to export")

// SourceKind distinguishes how the active answer key is supplied.
type SourceKind string

const (
	// SourceURL references an externally hosted answer key document.
	SourceURL SourceKind = "url"
	// SourceText holds inline generated or hand-edited answer key text.
	SourceText SourceKind = "text"
)

// AnswerKeySource is the active rubric choice for a session. Exactly one is
// active at a time; it is mutated only by explicit user action, never by a
// grading response.
type AnswerKeySource struct {
	Kind  SourceKind `json:"kind"`
	Value string     `json:"value"`
}

// Ready reports whether the source can back a grading request.
func (s AnswerKeySource) Ready() bool {
	return strings.TrimSpace(s.Value) != ""
}

// ResultState tags the lifecycle of one submission's grading result.
type ResultState string

const (
	// StatePending marks a grading request in flight.
	StatePending ResultState = "pending"
	// StateComplete marks a successfully graded submission.
	StateComplete ResultState = "complete"
	// StateError marks a failed grading attempt.
	StateError ResultState = "error"
)

// GradingResult is the most recent grading outcome for one submission. A
// re-grade replaces it entirely; no client-side history is kept.
type GradingResult struct {
	State         ResultState `json:"state"`
	AssignedGrade int         `json:"assigned_grade,omitempty"`
	Feedback      string      `json:"feedback,omitempty"`
	Justification string      `json:"justification,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// ExportRow is one completed grade prepared for export.
type ExportRow struct {
	StudentName   string
	AssignedGrade int
	Feedback      string
}

// ExportResult references the destination the grades were exported to.
type ExportResult struct {
	DestinationURL string `json:"destination_url"`
	Count          int    `json:"count"`
}

// Exporter ships a point-in-time snapshot of completed grades to an external
// destination.
type Exporter interface {
	Export(ctx context.Context, courseName, assignmentTitle string, rows []ExportRow) (ExportResult, error)
}

// Recorder appends a settled grade to the external history store.
type Recorder interface {
	Create(ctx context.Context, record *models.GradeRecord) error
}

// EventSink receives settled grading attempts for fan-out.
type EventSink interface {
	GradingSettled(ctx context.Context, event events.GradingEvent)
}

// BatchSummary reports the outcome of one GradeAll run.
type BatchSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Config collects the collaborators and identity of one grading session.
type Config struct {
	CourseID        string
	CourseName      string
	AssignmentID    string
	AssignmentTitle string
	Submissions     []classroom.Submission
	Grader          ai.Grader
	Exporter        Exporter
	Recorder        Recorder
	Events          EventSink
	Sanitizer       *bluemonday.Policy
	Logger          zerolog.Logger
	// Now overrides the clock used for creation and grading timestamps.
	// Nil means time.Now.
	Now func() time.Time
}

// Session orchestrates grading of one or many submissions against the active
// answer key while presenting a race-free view of per-submission status.
type Session struct {
	id              string
	courseID        string
	courseName      string
	assignmentID    string
	assignmentTitle string
	createdAt       time.Time

	grader    ai.Grader
	exporter  Exporter
	recorder  Recorder
	events    EventSink
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu           sync.Mutex
	submissions  []classroom.Submission
	keySource    AnswerKeySource
	results      map[string]GradingResult
	pending      map[string]struct{}
	batchRunning bool
}

// New creates a session over a fixed submission list. The list order is the
// dispatch order for batch grading.
func New(cfg Config) *Session {
	clock := cfg.Now
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		id:              uuid.NewString(),
		courseID:        cfg.CourseID,
		courseName:      cfg.CourseName,
		assignmentID:    cfg.AssignmentID,
		assignmentTitle: cfg.AssignmentTitle,
		createdAt:       clock().UTC(),
		grader:          cfg.Grader,
		exporter:        cfg.Exporter,
		recorder:        cfg.Recorder,
		events:          cfg.Events,
		sanitizer:       cfg.Sanitizer,
		logger:          cfg.Logger.With().Str("component", "grading_session").Str("assignment_id", cfg.AssignmentID).Logger(),
		tracer:          otel.Tracer("github.com/dteguh/gradeflow-api/internal/session"),
		now:             clock,
		submissions:     append([]classroom.Submission(nil), cfg.Submissions...),
		results:         make(map[string]GradingResult),
		pending:         make(map[string]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetAnswerKeySource replaces the active source. Requests already dispatched
// keep the payload fixed at their dispatch time.
func (s *Session) SetAnswerKeySource(source AnswerKeySource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keySource = source
}

// CanGrade reports whether grading may currently be attempted.
func (s *Session) CanGrade() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keySource.Ready()
}

// GradeOne grades a single submission against the active answer key. Calling
// it for a submission that is already pending is a no-op, so at most one
// grading request per submission is ever in flight. Once a result settles the
// call is safe to repeat; a re-grade replaces the previous result entirely.
func (s *Session) GradeOne(ctx context.Context, submissionID string) error {
	s.mu.Lock()
	if !s.keySource.Ready() {
		s.mu.Unlock()
		return ErrNoAnswerKey
	}

	submission, ok := s.findSubmission(submissionID)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownSubmission
	}

	if _, inFlight := s.pending[submissionID]; inFlight {
		s.mu.Unlock()
		return nil
	}

	// The request payload is frozen here; switching the answer key while
	// this request is in flight does not rewrite it.
	request := ai.GradeRequest{
		CourseID:        s.courseID,
		CourseName:      s.courseName,
		AssignmentID:    s.assignmentID,
		AssignmentTitle: s.assignmentTitle,
		SubmissionID:    submissionID,
		StudentName:     submission.StudentName,
		AnswerKey:       ai.AnswerKey{Kind: string(s.keySource.Kind), Value: s.keySource.Value},
	}
	s.pending[submissionID] = struct{}{}
	s.results[submissionID] = GradingResult{State: StatePending}
	s.mu.Unlock()

	spanCtx, span := s.tracer.Start(ctx, "session.grade_one", trace.WithAttributes(
		attribute.String("grading.submission_id", submissionID),
		attribute.String("grading.answer_key_kind", request.AnswerKey.Kind),
	))
	outcome, err := s.grader.Grade(spanCtx, request)
	span.End()

	s.mu.Lock()
	delete(s.pending, submissionID)
	if err != nil {
		s.results[submissionID] = GradingResult{State: StateError, Error: err.Error()}
		s.mu.Unlock()

		s.logger.Warn().Err(err).Str("submission_id", submissionID).Msg("grading request failed")
		s.emit(ctx, submission, GradingResult{State: StateError, Error: err.Error()})
		return err
	}

	result := GradingResult{
		State:         StateComplete,
		AssignedGrade: outcome.AssignedGrade,
		Feedback:      s.clean(outcome.Feedback),
		Justification: s.clean(outcome.Justification),
	}
	s.results[submissionID] = result
	s.mu.Unlock()

	s.record(ctx, submission, result)
	s.emit(ctx, submission, result)

	return nil
}

// GradeAll grades every submission in the fixed list order, one request at a
// time, including already graded ones. Sequential dispatch bounds load on the
// grading backend to a single outstanding request. Per-submission failures do
// not abort the rest of the run. A second concurrent call is rejected.
func (s *Session) GradeAll(ctx context.Context) (BatchSummary, error) {
	s.mu.Lock()
	if !s.keySource.Ready() {
		s.mu.Unlock()
		return BatchSummary{}, ErrNoAnswerKey
	}
	if s.batchRunning {
		s.mu.Unlock()
		return BatchSummary{}, ErrBatchRunning
	}
	s.batchRunning = true
	order := make([]string, 0, len(s.submissions))
	for _, submission := range s.submissions {
		order = append(order, submission.ID)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchRunning = false
		s.mu.Unlock()
	}()

	ctx, span := s.tracer.Start(ctx, "session.grade_all", trace.WithAttributes(
		attribute.Int("grading.batch_size", len(order)),
	))
	defer span.End()

	summary := BatchSummary{Total: len(order)}
	for _, submissionID := range order {
		if err := s.GradeOne(ctx, submissionID); err != nil {
			summary.Failed++
			continue
		}
		summary.Completed++
	}

	s.logger.Info().
		Int("total", summary.Total).
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Msg("batch grading settled")

	return summary, nil
}

// ExportCompleted collects every submission whose result is currently
// complete and hands the snapshot to the exporter. Grading may continue
// concurrently; the export is a point-in-time snapshot, not a live view.
func (s *Session) ExportCompleted(ctx context.Context) (ExportResult, error) {
	s.mu.Lock()
	rows := make([]ExportRow, 0, len(s.results))
	for _, submission := range s.submissions {
		result, ok := s.results[submission.ID]
		if !ok || result.State != StateComplete {
			continue
		}
		rows = append(rows, ExportRow{
			StudentName:   submission.StudentName,
			AssignedGrade: result.AssignedGrade,
			Feedback:      result.Feedback,
		})
	}
	courseName := s.courseName
	assignmentTitle := s.assignmentTitle
	s.mu.Unlock()

	if len(rows) == 0 {
		return ExportResult{}, ErrNothingToExport
	}

	return s.exporter.Export(ctx, courseName, assignmentTitle, rows)
}

func (s *Session) findSubmission(submissionID string) (classroom.Submission, bool) {
	for _, submission := range s.submissions {
		if submission.ID == submissionID {
			return submission, true
		}
	}
	return classroom.Submission{}, false
}

func (s *Session) clean(text string) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func (s *Session) record(ctx context.Context, submission classroom.Submission, result GradingResult) {
	if s.recorder == nil {
		return
	}

	record := models.GradeRecord{
		CourseID:        s.courseID,
		CourseName:      s.courseName,
		AssignmentID:    s.assignmentID,
		AssignmentTitle: s.assignmentTitle,
		SubmissionID:    submission.ID,
		StudentName:     submission.StudentName,
		AssignedGrade:   result.AssignedGrade,
		Feedback:        result.Feedback,
		Justification:   result.Justification,
		GradedAt:        s.now().UTC(),
	}
	if err := s.recorder.Create(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to persist grade history")
	}
}

func (s *Session) emit(ctx context.Context, submission classroom.Submission, result GradingResult) {
	if s.events == nil {
		return
	}

	s.events.GradingSettled(ctx, events.GradingEvent{
		SessionID:     s.id,
		CourseID:      s.courseID,
		AssignmentID:  s.assignmentID,
		SubmissionID:  submission.ID,
		StudentName:   submission.StudentName,
		State:         string(result.State),
		AssignedGrade: result.AssignedGrade,
		Error:         result.Error,
		OccurredAt:    s.now().UTC(),
	})
}
