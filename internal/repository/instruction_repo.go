package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vittoclass/libel-IA/internal/models"
)

// InstructionRepository defines data operations for stored grading
// instructions.
type InstructionRepository interface {
	Create(ctx context.Context, instruction *models.Instruction) error
	ListByContext(ctx context.Context, tipo, clave string) ([]models.Instruction, error)
}

type instructionRepository struct {
	db *gorm.DB
}

// NewInstructionRepository instantiates the repository.
func NewInstructionRepository(db *gorm.DB) InstructionRepository {
	return &instructionRepository{db: db}
}

func (r *instructionRepository) Create(ctx context.Context, instruction *models.Instruction) error {
	return r.db.WithContext(ctx).Create(instruction).Error
}

// ListByContext returns every record for the context, in insertion order
// so merges stay stable between calls. General instructions carry no key,
// so the key filter only applies when one is given.
func (r *instructionRepository) ListByContext(ctx context.Context, tipo, clave string) ([]models.Instruction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Instruction{}).
		Where("tipo = ?", tipo)

	if clave != "" {
		query = query.Where("clave = ?", clave)
	}

	var instructions []models.Instruction
	if err := query.Order("id ASC").Find(&instructions).Error; err != nil {
		return nil, err
	}

	return instructions, nil
}
