package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/internal/utils"
	"github.com/vittoclass/libel-IA/pkg/vision"
)

// OCRHandler accepts scanned documents and returns their extracted text.
type OCRHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewOCRHandler builds an OCR handler instance.
func NewOCRHandler(service service.DocumentService, logger zerolog.Logger) *OCRHandler {
	return &OCRHandler{
		service: service,
		logger:  logger.With().Str("component", "ocr_handler").Logger(),
	}
}

// Register attaches the routes to the provided router.
func (h *OCRHandler) Register(router fiber.Router) {
	router.Post("/ocr", h.extract)
}

func (h *OCRHandler) extract(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open file")
	}
	defer reader.Close()

	document, err := io.ReadAll(reader)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}

	response, err := h.service.Extract(c.Context(), file.Filename, document)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document analyzed", response)
}

func (h *OCRHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrOCRUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "document analysis not configured")
	case errors.Is(err, service.ErrUnsupportedDocument):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, vision.ErrSubmission):
		h.logger.Error().Err(err).Msg("document submission rejected")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, vision.ErrPollExhausted):
		h.logger.Error().Err(err).Msg("document analysis timed out")
		return utils.SendError(c, fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, vision.ErrAnalysisFailed):
		h.logger.Error().Err(err).Msg("document analysis failed")
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
