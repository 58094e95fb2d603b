package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/session"
	"github.com/dteguh/gradeflow-api/pkg/ai"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// ErrSessionNotFound indicates the grading session id is unknown or already closed.
var ErrSessionNotFound = errors.New("grading session not found")

// ErrCourseNotFound indicates the course id is not visible to the instructor.
var ErrCourseNotFound = errors.New("course not found")

// ErrAssignmentNotFound indicates the assignment does not exist in the course.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ClassroomClient is the subset of the classroom platform consumed by grading
// sessions.
type ClassroomClient interface {
	ListCourses(ctx context.Context) ([]classroom.Course, error)
	ListAssignments(ctx context.Context, courseID string) ([]classroom.Assignment, error)
	ListSubmissions(ctx context.Context, courseID, assignmentID string) ([]classroom.Submission, error)
}

// SessionService manages the lifetime of grading sessions and proxies their
// operations. Sessions live in memory only; navigating away (closing) or a
// restart discards them, and state is re-derived from the platform on open.
type SessionService interface {
	Open(ctx context.Context, payload dto.OpenSessionRequest) (session.View, error)
	View(sessionID string) (session.View, error)
	Close(sessionID string) error
	SetAnswerKey(sessionID string, payload dto.SetAnswerKeyRequest) (session.View, error)
	GradeOne(ctx context.Context, sessionID, submissionID string) error
	GradeAll(ctx context.Context, sessionID string) (session.BatchSummary, error)
	Export(ctx context.Context, sessionID string) (dto.ExportResponse, error)
}

type sessionService struct {
	classroom ClassroomClient
	grader    ai.Grader
	exporter  session.Exporter
	recorder  session.Recorder
	events    session.EventSink
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewSessionService constructs the session manager.
func NewSessionService(classroomClient ClassroomClient, grader ai.Grader, exporter session.Exporter, recorder session.Recorder, events session.EventSink, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		classroom: classroomClient,
		grader:    grader,
		exporter:  exporter,
		recorder:  recorder,
		events:    events,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "session_service").Logger(),
		tracer:    otel.Tracer("github.com/dteguh/gradeflow-api/internal/service/session"),
		sessions:  make(map[string]*session.Session),
	}
}

func (s *sessionService) Open(ctx context.Context, payload dto.OpenSessionRequest) (session.View, error) {
	ctx, span := s.tracer.Start(ctx, "session.open", trace.WithAttributes(
		attribute.String("session.course_id", payload.CourseID),
		attribute.String("session.assignment_id", payload.AssignmentID),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return session.View{}, err
	}

	course, err := s.findCourse(ctx, payload.CourseID)
	if err != nil {
		span.RecordError(err)
		return session.View{}, err
	}

	assignment, err := s.findAssignment(ctx, payload.CourseID, payload.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return session.View{}, err
	}

	submissions, err := s.classroom.ListSubmissions(ctx, payload.CourseID, payload.AssignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return session.View{}, err
	}

	sess := session.New(session.Config{
		CourseID:        course.ID,
		CourseName:      course.Name,
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		Submissions:     submissions,
		Grader:          s.grader,
		Exporter:        s.exporter,
		Recorder:        s.recorder,
		Events:          s.events,
		Sanitizer:       s.sanitizer,
		Logger:          s.logger,
	})

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", sess.ID()).
		Str("course_id", course.ID).
		Str("assignment_id", assignment.ID).
		Int("submissions", len(submissions)).
		Msg("grading session opened")

	return sess.Snapshot(), nil
}

func (s *sessionService) View(sessionID string) (session.View, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.Snapshot(), nil
}

func (s *sessionService) Close(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *sessionService) SetAnswerKey(sessionID string, payload dto.SetAnswerKeyRequest) (session.View, error) {
	if err := s.validator.Struct(payload); err != nil {
		return session.View{}, err
	}

	sess, err := s.get(sessionID)
	if err != nil {
		return session.View{}, err
	}

	sess.SetAnswerKeySource(session.AnswerKeySource{
		Kind:  session.SourceKind(payload.Kind),
		Value: payload.Value,
	})

	return sess.Snapshot(), nil
}

func (s *sessionService) GradeOne(ctx context.Context, sessionID, submissionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return sess.GradeOne(ctx, submissionID)
}

func (s *sessionService) GradeAll(ctx context.Context, sessionID string) (session.BatchSummary, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return session.BatchSummary{}, err
	}
	return sess.GradeAll(ctx)
}

func (s *sessionService) Export(ctx context.Context, sessionID string) (dto.ExportResponse, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return dto.ExportResponse{}, err
	}

	result, err := sess.ExportCompleted(ctx)
	if err != nil {
		return dto.ExportResponse{}, err
	}

	return dto.ExportResponse{DestinationURL: result.DestinationURL, Count: result.Count}, nil
}

func (s *sessionService) get(sessionID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) findCourse(ctx context.Context, courseID string) (classroom.Course, error) {
	courses, err := s.classroom.ListCourses(ctx)
	if err != nil {
		return classroom.Course{}, err
	}

	for _, course := range courses {
		if course.ID == courseID {
			return course, nil
		}
	}
	return classroom.Course{}, ErrCourseNotFound
}

func (s *sessionService) findAssignment(ctx context.Context, courseID, assignmentID string) (classroom.Assignment, error) {
	assignments, err := s.classroom.ListAssignments(ctx, courseID)
	if err != nil {
		return classroom.Assignment{}, err
	}

	for _, assignment := range assignments {
		if assignment.ID == assignmentID {
			return assignment, nil
		}
	}
	return classroom.Assignment{}, ErrAssignmentNotFound
}
