package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/service"
	"github.com/dteguh/gradeflow-api/internal/session"
	"github.com/dteguh/gradeflow-api/internal/utils"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// SessionHandler wires the grading session lifecycle endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session routes to the router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.open)
	router.Get("/:sessionId", h.view)
	router.Delete("/:sessionId", h.close)
	router.Put("/:sessionId/answer-key", h.setAnswerKey)
	router.Post("/:sessionId/submissions/:submissionId/grade", h.gradeOne)
	router.Post("/:sessionId/grade-all", h.gradeAll)
	router.Post("/:sessionId/export", h.export)
}

func (h *SessionHandler) open(c *fiber.Ctx) error {
	var payload dto.OpenSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.Open(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, classroom.ErrUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "classroom authorization expired")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to open grading session")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to open grading session")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grading session opened", view)
}

func (h *SessionHandler) view(c *fiber.Ctx) error {
	view, err := h.service.View(trimParam(c, "sessionId"))
	if err != nil {
		return h.sessionError(c, err, "failed to load grading session")
	}

	return utils.SendSuccess(c, "grading session retrieved", view)
}

func (h *SessionHandler) close(c *fiber.Ctx) error {
	if err := h.service.Close(trimParam(c, "sessionId")); err != nil {
		return h.sessionError(c, err, "failed to close grading session")
	}

	return utils.SendSuccess(c, "grading session closed", nil)
}

func (h *SessionHandler) setAnswerKey(c *fiber.Ctx) error {
	var payload dto.SetAnswerKeyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.SetAnswerKey(trimParam(c, "sessionId"), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.sessionError(c, err, "failed to set answer key")
	}

	return utils.SendSuccess(c, "answer key updated", view)
}

func (h *SessionHandler) gradeOne(c *fiber.Ctx) error {
	sessionID := trimParam(c, "sessionId")
	submissionID := trimParam(c, "submissionId")

	if err := h.service.GradeOne(c.Context(), sessionID, submissionID); err != nil {
		switch {
		case errors.Is(err, session.ErrUnknownSubmission):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, session.ErrNoAnswerKey):
			return utils.SendError(c, fiber.StatusBadRequest, "answer key is required before grading")
		default:
			return h.sessionError(c, err, "failed to grade submission")
		}
	}

	view, err := h.service.View(sessionID)
	if err != nil {
		return h.sessionError(c, err, "failed to load grading session")
	}

	return utils.SendSuccess(c, "submission graded", view)
}

func (h *SessionHandler) gradeAll(c *fiber.Ctx) error {
	sessionID := trimParam(c, "sessionId")

	summary, err := h.service.GradeAll(c.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoAnswerKey):
			return utils.SendError(c, fiber.StatusBadRequest, "answer key is required before grading")
		case errors.Is(err, session.ErrBatchRunning):
			return utils.SendError(c, fiber.StatusConflict, "batch grading already in progress")
		default:
			return h.sessionError(c, err, "failed to run batch grading")
		}
	}

	return utils.SendSuccess(c, "batch grading finished", summary)
}

func (h *SessionHandler) export(c *fiber.Ctx) error {
	response, err := h.service.Export(c.Context(), trimParam(c, "sessionId"))
	if err != nil {
		if errors.Is(err, session.ErrNothingToExport) {
			return utils.SendError(c, fiber.StatusBadRequest, "no completed grades to export")
		}
		return h.sessionError(c, err, "failed to export grades")
	}

	return utils.SendSuccess(c, "grades exported", response)
}

func (h *SessionHandler) sessionError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "grading session not found")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
