package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/repository"
	"github.com/dteguh/gradeflow-api/internal/utils"
)

// HistoryHandler exposes the raw grading history with optional filters.
type HistoryHandler struct {
	repo   repository.GradeHistoryRepository
	logger zerolog.Logger
}

// NewHistoryHandler constructs the handler.
func NewHistoryHandler(repo repository.GradeHistoryRepository, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:   repo,
		logger: logger.With().Str("component", "history_handler").Logger(),
	}
}

// Register attaches history routes to the router group.
func (h *HistoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *HistoryHandler) list(c *fiber.Ctx) error {
	var query dto.HistoryQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	records, err := h.repo.List(c.Context(), repository.HistoryFilter{
		CourseID:     query.CourseID,
		AssignmentID: query.AssignmentID,
		StudentName:  query.StudentName,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list grading history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list grading history")
	}

	return utils.SendSuccess(c, "grading history retrieved", records)
}
