package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/analytics"
	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/service"
	"github.com/dteguh/gradeflow-api/internal/utils"
)

// AnalyticsHandler serves the grading analytics dashboard endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/compare", h.compare)
	router.Get("/trends", h.trends)
	router.Get("/courses/:courseId/students", h.courseStudents)
	router.Get("/courses/:courseId/students/:studentName", h.studentDetail)
}

func (h *AnalyticsHandler) summary(c *fiber.Ctx) error {
	response, err := h.service.Summary(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build analytics summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build analytics summary")
	}

	return utils.SendSuccess(c, "analytics summary retrieved", response)
}

func (h *AnalyticsHandler) compare(c *fiber.Ctx) error {
	var query dto.CompareQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	if query.Type != "courses" && query.Type != "assignments" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid comparison type, use 'courses' or 'assignments'")
	}

	response, err := h.service.Compare(c.Context(), query.Type, splitAndTrim(query.IDs))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("compare_type", query.Type).Msg("failed to compare performance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compare performance")
	}

	return utils.SendSuccess(c, "performance comparison retrieved", response)
}

func (h *AnalyticsHandler) trends(c *fiber.Ctx) error {
	var query dto.TrendsQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	if query.Period == "" {
		query.Period = string(analytics.PeriodAll)
	}
	switch analytics.TrendPeriod(query.Period) {
	case analytics.PeriodWeek, analytics.PeriodMonth, analytics.PeriodSemester, analytics.PeriodAll:
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "invalid time period, use 'week', 'month', 'semester' or 'all'")
	}

	response, err := h.service.Trends(c.Context(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load performance trends")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load performance trends")
	}

	return utils.SendSuccess(c, "performance trends retrieved", response)
}

func (h *AnalyticsHandler) courseStudents(c *fiber.Ctx) error {
	courseID := trimParam(c, "courseId")
	if courseID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id is required")
	}

	response, err := h.service.CourseStudents(c.Context(), courseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("course_id", courseID).Msg("failed to list course students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list course students")
	}

	return utils.SendSuccess(c, "course students retrieved", response)
}

func (h *AnalyticsHandler) studentDetail(c *fiber.Ctx) error {
	courseID := trimParam(c, "courseId")
	studentName := trimParam(c, "studentName")
	if courseID == "" || studentName == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id and student name are required")
	}

	response, err := h.service.StudentDetail(c.Context(), courseID, studentName)
	if err != nil {
		if errors.Is(err, service.ErrNoStudentHistory) {
			return utils.SendError(c, fiber.StatusNotFound, "no grading history for student")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("course_id", courseID).Msg("failed to load student detail")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load student detail")
	}

	return utils.SendSuccess(c, "student detail retrieved", response)
}
