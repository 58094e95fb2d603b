package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/pkg/ai"
)

// KeyGenService backs the generate -> refine -> approve answer key wizard.
type KeyGenService interface {
	Generate(ctx context.Context, payload dto.GenerateKeyRequest) (dto.AnswerKeyResponse, error)
	Refine(ctx context.Context, payload dto.RefineKeyRequest) (dto.AnswerKeyResponse, error)
}

type keyGenService struct {
	classroom ClassroomClient
	generator ai.KeyGenerator
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewKeyGenService constructs the answer key generation service.
func NewKeyGenService(classroomClient ClassroomClient, generator ai.KeyGenerator, validate *validator.Validate, logger zerolog.Logger) KeyGenService {
	return &keyGenService{
		classroom: classroomClient,
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "keygen_service").Logger(),
		tracer:    otel.Tracer("github.com/dteguh/gradeflow-api/internal/service/keygen"),
	}
}

func (s *keyGenService) Generate(ctx context.Context, payload dto.GenerateKeyRequest) (dto.AnswerKeyResponse, error) {
	ctx, span := s.tracer.Start(ctx, "keygen.generate", trace.WithAttributes(
		attribute.String("keygen.course_id", payload.CourseID),
		attribute.String("keygen.assignment_id", payload.AssignmentID),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AnswerKeyResponse{}, err
	}

	assignments, err := s.classroom.ListAssignments(ctx, payload.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_assignments_failed")
		return dto.AnswerKeyResponse{}, err
	}

	var title, description string
	found := false
	for _, assignment := range assignments {
		if assignment.ID == payload.AssignmentID {
			title = assignment.Title
			description = assignment.Description
			found = true
			break
		}
	}
	if !found {
		span.SetStatus(codes.Error, "assignment_not_found")
		return dto.AnswerKeyResponse{}, ErrAssignmentNotFound
	}

	key, err := s.generator.GenerateInitialKey(ctx, title, description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation_failed")
		return dto.AnswerKeyResponse{}, err
	}

	s.logger.Info().
		Str("assignment_id", payload.AssignmentID).
		Int("key_length", len(key)).
		Msg("answer key generated")

	return dto.AnswerKeyResponse{AnswerKey: key}, nil
}

func (s *keyGenService) Refine(ctx context.Context, payload dto.RefineKeyRequest) (dto.AnswerKeyResponse, error) {
	ctx, span := s.tracer.Start(ctx, "keygen.refine")
	defer span.End()

	payload.Feedback = strings.TrimSpace(payload.Feedback)
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AnswerKeyResponse{}, err
	}

	key, err := s.generator.RefineKey(ctx, payload.CurrentKey, payload.Feedback)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refinement_failed")
		return dto.AnswerKeyResponse{}, err
	}

	return dto.AnswerKeyResponse{AnswerKey: key}, nil
}
