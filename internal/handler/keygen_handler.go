package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/service"
	"github.com/dteguh/gradeflow-api/internal/utils"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

// KeyGenHandler wires the AI answer key drafting endpoints.
type KeyGenHandler struct {
	service service.KeyGenService
	logger  zerolog.Logger
}

// NewKeyGenHandler constructs the handler.
func NewKeyGenHandler(service service.KeyGenService, logger zerolog.Logger) *KeyGenHandler {
	return &KeyGenHandler{
		service: service,
		logger:  logger.With().Str("component", "keygen_handler").Logger(),
	}
}

// Register attaches answer key routes to the router group.
func (h *KeyGenHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Post("/refine", h.refine)
}

func (h *KeyGenHandler) generate(c *fiber.Ctx) error {
	var payload dto.GenerateKeyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Generate(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, classroom.ErrUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "classroom authorization expired")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to generate answer key")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to generate answer key")
		}
	}

	return utils.SendSuccess(c, "answer key generated", response)
}

func (h *KeyGenHandler) refine(c *fiber.Ctx) error {
	var payload dto.RefineKeyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Refine(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to refine answer key")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to refine answer key")
	}

	return utils.SendSuccess(c, "answer key refined", response)
}
