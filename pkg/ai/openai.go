package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading and key generation requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI grading and key generation requests",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed grader.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Grader and KeyGenerator on the OpenAI chat
// completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a grading client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/dteguh/gradeflow-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Grade sends the grading request to OpenAI and parses the structured result.
func (c *OpenAIClient) Grade(parent context.Context, req GradeRequest) (GradeOutcome, error) {
	ctx, span := c.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.String("grading.submission_id", req.SubmissionID),
		attribute.String("grading.answer_key_kind", req.AnswerKey.Kind),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradePrompt(req),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, "grade").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeOutcome{}, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeOutcome{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	outcome, err := parseGradeResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeOutcome{}, err
	}

	span.SetAttributes(attribute.Int("grading.assigned_grade", outcome.AssignedGrade))

	return outcome, nil
}

// GenerateInitialKey asks the model to draft an answer key for an assignment.
func (c *OpenAIClient) GenerateInitialKey(parent context.Context, assignmentTitle, assignmentDescription string) (string, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Draft a complete answer key for the following assignment. ")
	prompt.WriteString("Include model answers for every question and a short rubric describing how partial credit should be awarded.\n\n")
	prompt.WriteString("# Assignment\n")
	prompt.WriteString(assignmentTitle)
	if assignmentDescription != "" {
		prompt.WriteString("\n\n## Description\n")
		prompt.WriteString(assignmentDescription)
	}

	return c.complete(parent, "generate_key", keyAuthorSystemPrompt(), prompt.String())
}

// RefineKey rewrites an existing answer key according to instructor feedback.
func (c *OpenAIClient) RefineKey(parent context.Context, currentKey, feedback string) (string, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Revise the answer key below according to the instructor's feedback. ")
	prompt.WriteString("Return the full revised key, not a diff.\n\n")
	prompt.WriteString("# Current Answer Key\n")
	prompt.WriteString(currentKey)
	prompt.WriteString("\n\n# Instructor Feedback\n")
	prompt.WriteString(feedback)

	return c.complete(parent, "refine_key", keyAuthorSystemPrompt(), prompt.String())
}

func (c *OpenAIClient) complete(parent context.Context, operation, system, user string) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func graderSystemPrompt() string {
	return "You are an experienced teaching assistant grading student work against an answer key. " +
		"Respond with a JSON object containing assigned_grade (integer 0-100), feedback (constructive comments addressed " +
		"to the student), and justification (a short explanation of how the grade maps to the answer key)."
}

func keyAuthorSystemPrompt() string {
	return "You are an experienced instructor writing answer keys. Respond with plain text only, no JSON."
}

func buildGradePrompt(req GradeRequest) string {
	builder := strings.Builder{}
	builder.WriteString("# Course\n")
	builder.WriteString(req.CourseName)
	builder.WriteString("\n\n## Assignment\n")
	builder.WriteString(req.AssignmentTitle)
	builder.WriteString("\n\n## Student\n")
	builder.WriteString(req.StudentName)
	builder.WriteString("\n\n## Submission Reference\n")
	builder.WriteString(req.SubmissionID)
	if req.AnswerKey.Kind == AnswerKeyKindURL {
		builder.WriteString("\n\n## Answer Key Document\n")
		builder.WriteString(req.AnswerKey.Value)
	} else {
		builder.WriteString("\n\n## Answer Key\n")
		builder.WriteString(req.AnswerKey.Value)
	}
	builder.WriteString("\nGrade the submission against the answer key and return JSON.")
	return builder.String()
}

func parseGradeResponse(content string) (GradeOutcome, error) {
	type payload struct {
		AssignedGrade int    `json:"assigned_grade"`
		Feedback      string `json:"feedback"`
		Justification string `json:"justification"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return GradeOutcome{}, fmt.Errorf("parse grade json: %w", err)
	}

	if data.AssignedGrade < 0 {
		data.AssignedGrade = 0
	}
	if data.AssignedGrade > 100 {
		data.AssignedGrade = 100
	}

	return GradeOutcome{
		AssignedGrade: data.AssignedGrade,
		Feedback:      data.Feedback,
		Justification: data.Justification,
	}, nil
}
