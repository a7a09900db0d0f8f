package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/models"
	"github.com/vittoclass/libel-IA/internal/repository"
)

// ErrStoreUnavailable indicates stored instructions could not be read.
// Callers treat it as a warning: grading proceeds without them.
var ErrStoreUnavailable = errors.New("instruction store unavailable")

// InstructionResolver merges stored grading instructions for a course and
// student into a single block of directive lines.
type InstructionResolver interface {
	Resolve(ctx context.Context, curso, estudiante string) (string, error)
}

type instructionResolver struct {
	repo   repository.InstructionRepository
	logger zerolog.Logger
}

// NewInstructionResolver constructs the resolver.
func NewInstructionResolver(repo repository.InstructionRepository, logger zerolog.Logger) InstructionResolver {
	return &instructionResolver{
		repo:   repo,
		logger: logger.With().Str("component", "instruction_resolver").Logger(),
	}
}

// Resolve queries the three context scopes and concatenates their records
// in fixed order: general first, then course, then student. More specific
// guidance comes last so the evaluation model reads it as a refinement.
func (r *instructionResolver) Resolve(ctx context.Context, curso, estudiante string) (string, error) {
	groups := []struct {
		tipo  string
		clave string
		label string
	}{
		{models.ContextGeneral, "", "General"},
		{models.ContextCourse, strings.ToLower(strings.TrimSpace(curso)), "Curso"},
		{models.ContextStudent, strings.ToLower(strings.TrimSpace(estudiante)), "Estudiante"},
	}

	var lines []string
	for _, group := range groups {
		records, err := r.repo.ListByContext(ctx, group.tipo, group.clave)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		for _, record := range records {
			lines = append(lines, fmt.Sprintf("- %s: %s", group.label, record.Texto))
		}
	}

	merged := strings.Join(lines, "\n")
	r.logger.Debug().Int("instructions", len(lines)).Msg("instructions resolved")

	return merged, nil
}
