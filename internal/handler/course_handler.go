package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/service"
	"github.com/dteguh/gradeflow-api/internal/utils"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// CourseHandler exposes the instructor's classroom roster for the course and
// assignment pickers.
type CourseHandler struct {
	classroom service.ClassroomClient
	logger    zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(classroomClient service.ClassroomClient, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		classroom: classroomClient,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course browsing routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.listCourses)
	router.Get("/:courseId/assignments", h.listAssignments)
}

func (h *CourseHandler) listCourses(c *fiber.Ctx) error {
	courses, err := h.classroom.ListCourses(c.Context())
	if err != nil {
		return h.platformError(c, err, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) listAssignments(c *fiber.Ctx) error {
	courseID := trimParam(c, "courseId")
	if courseID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id is required")
	}

	assignments, err := h.classroom.ListAssignments(c.Context(), courseID)
	if err != nil {
		return h.platformError(c, err, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

// platformError maps classroom client failures. An authorization failure means
// the stored platform token is no longer usable, so the client must restart
// its connection flow.
func (h *CourseHandler) platformError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, classroom.ErrUnauthorized) {
		return utils.SendError(c, fiber.StatusUnauthorized, "classroom authorization expired")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
