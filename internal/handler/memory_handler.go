package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/internal/utils"
)

// MemoryHandler manages the saved-evaluation history endpoints.
type MemoryHandler struct {
	service service.MemoryService
	logger  zerolog.Logger
}

// NewMemoryHandler builds a memory handler instance.
func NewMemoryHandler(service service.MemoryService, logger zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{
		service: service,
		logger:  logger.With().Str("component", "memory_handler").Logger(),
	}
}

// Register attaches the routes to the provided router. The static
// /memoria/all route must come before the parameterized one.
func (h *MemoryHandler) Register(router fiber.Router) {
	router.Get("/memoria/all", h.listAll)
	router.Get("/memoria/:student", h.listByStudent)
	router.Post("/guardar", h.save)
	router.Delete("/eliminar_evaluacion/:id", h.delete)
}

func (h *MemoryHandler) listAll(c *fiber.Ctx) error {
	records, err := h.service.ListAll(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", records)
}

func (h *MemoryHandler) listByStudent(c *fiber.Ctx) error {
	student, err := pathParam(c, "student")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "student is required")
	}

	records, err := h.service.ListByStudent(c.Context(), student)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", records)
}

func (h *MemoryHandler) save(c *fiber.Ctx) error {
	var payload dto.SaveEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.Save(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation saved", record)
}

func (h *MemoryHandler) delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := h.service.Delete(c.Context(), uint(id)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation deleted", nil)
}

func (h *MemoryHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
