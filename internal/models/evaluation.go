package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation is a persisted grading result. Saving one is a side effect of
// grading, never a prerequisite for it.
type Evaluation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Fecha      time.Time      `gorm:"column:fecha;not null" json:"fecha"`
	Estudiante string         `gorm:"column:estudiante;size:255;not null" json:"estudiante"`
	Curso      string         `gorm:"column:curso;size:255" json:"curso"`
	Prueba     string         `gorm:"column:prueba;size:255" json:"prueba"`
	Nota       float64        `gorm:"column:nota" json:"nota"`
	Texto      string         `gorm:"column:texto;type:text" json:"texto"`
	Rubrica    string         `gorm:"column:rubrica;type:text" json:"rubrica"`
	Resultado  datatypes.JSON `gorm:"column:resultado;type:json" json:"resultado"`
}

// TableName keeps the table shared with earlier revisions of the app.
func (Evaluation) TableName() string {
	return "evaluaciones"
}
