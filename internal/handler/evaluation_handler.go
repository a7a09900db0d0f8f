package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/internal/utils"
	"github.com/vittoclass/libel-IA/pkg/ai"
)

// EvaluationHandler exposes the grading pipeline over HTTP.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/evaluar", h.evaluate)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Evaluate(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation completed", response)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrEvaluatorUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "evaluation engine not configured")
	case errors.Is(err, ai.ErrService):
		h.logger.Error().Err(err).Msg("completion service rejected the evaluation")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, ai.ErrMalformedResponse):
		h.logger.Error().Err(err).Msg("completion service returned malformed content")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, ai.ErrNetwork):
		h.logger.Error().Err(err).Msg("completion service unreachable")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
