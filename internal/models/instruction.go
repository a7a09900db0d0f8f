package models

import "time"

// Context kinds for stored grading instructions, ordered from least to
// most specific.
const (
	ContextGeneral = "general"
	ContextCourse  = "curso"
	ContextStudent = "estudiante"
)

// Instruction is a stored "teach the grader" note. Records are read-only
// to the grading pipeline; several may share the same kind and key and all
// of them are merged, none deduplicated.
type Instruction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Tipo      string    `gorm:"column:tipo;size:32;not null;index:idx_retro_contexto" json:"tipo"`
	Clave     string    `gorm:"column:clave;size:255;index:idx_retro_contexto" json:"clave"`
	Texto     string    `gorm:"column:instruccion;type:text;not null" json:"instruccion"`
}

// TableName keeps the table shared with earlier revisions of the app.
func (Instruction) TableName() string {
	return "retroalimentacion_ia"
}
