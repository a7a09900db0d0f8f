package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/models"
	"github.com/vittoclass/libel-IA/internal/repository"
)

// InstructionService accepts new "teach the grader" notes.
type InstructionService interface {
	Create(ctx context.Context, payload dto.InstructionCreateRequest) (dto.InstructionResponse, error)
}

type instructionService struct {
	repo      repository.InstructionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewInstructionService constructs an InstructionService instance.
func NewInstructionService(repo repository.InstructionRepository, validate *validator.Validate, logger zerolog.Logger) InstructionService {
	return &instructionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "instruction_service").Logger(),
	}
}

// Create normalizes the context key to lowercase before storing, so
// resolution only ever compares normalized keys.
func (s *instructionService) Create(ctx context.Context, payload dto.InstructionCreateRequest) (dto.InstructionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstructionResponse{}, err
	}

	tipo := strings.ToLower(strings.TrimSpace(payload.Tipo))
	clave := strings.ToLower(strings.TrimSpace(payload.Clave))
	if tipo == models.ContextGeneral {
		clave = ""
	}

	instruction := models.Instruction{
		Tipo:  tipo,
		Clave: clave,
		Texto: strings.TrimSpace(payload.Instruccion),
	}

	if err := s.repo.Create(ctx, &instruction); err != nil {
		return dto.InstructionResponse{}, err
	}

	s.logger.Info().Str("tipo", tipo).Str("clave", clave).Msg("grading instruction stored")

	return dto.NewInstructionResponse(instruction), nil
}
