package dto

import (
	"time"

	"github.com/vittoclass/libel-IA/internal/models"
)

// InstructionCreateRequest stores a new "teach the grader" note. The key
// is required for course and student scopes and ignored for general ones.
type InstructionCreateRequest struct {
	Tipo        string `json:"tipo" validate:"required,oneof=general curso estudiante"`
	Clave       string `json:"clave" validate:"required_unless=Tipo general"`
	Instruccion string `json:"instruccion" validate:"required,min=3"`
}

// InstructionResponse serializes a stored instruction.
type InstructionResponse struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Tipo        string    `json:"tipo"`
	Clave       string    `json:"clave"`
	Instruccion string    `json:"instruccion"`
}

// NewInstructionResponse converts an Instruction model into a DTO.
func NewInstructionResponse(model models.Instruction) InstructionResponse {
	return InstructionResponse{
		ID:          model.ID,
		CreatedAt:   model.CreatedAt,
		Tipo:        model.Tipo,
		Clave:       model.Clave,
		Instruccion: model.Texto,
	}
}
