package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/internal/utils"
)

// InstructionHandler accepts "teach the grader" feedback notes.
type InstructionHandler struct {
	service service.InstructionService
	logger  zerolog.Logger
}

// NewInstructionHandler builds an instruction handler instance.
func NewInstructionHandler(service service.InstructionService, logger zerolog.Logger) *InstructionHandler {
	return &InstructionHandler{
		service: service,
		logger:  logger.With().Str("component", "instruction_handler").Logger(),
	}
}

// Register attaches the routes to the provided router.
func (h *InstructionHandler) Register(router fiber.Router) {
	router.Post("/retroalimentacion_ia", h.create)
}

func (h *InstructionHandler) create(c *fiber.Ctx) error {
	var payload dto.InstructionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	instruction, err := h.service.Create(c.Context(), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "instruction stored", instruction)
}
