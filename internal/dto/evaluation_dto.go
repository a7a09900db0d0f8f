package dto

import (
	"encoding/json"
	"time"

	"github.com/vittoclass/libel-IA/internal/models"
	"github.com/vittoclass/libel-IA/pkg/ai"
)

// EvaluateRequest is the payload for grading a student's text against a
// rubric. Flexibility defaults to a balanced evaluator when omitted.
type EvaluateRequest struct {
	Estudiante   string `json:"nombre_estudiante" validate:"required,min=2"`
	Curso        string `json:"curso" validate:"required"`
	Profesor     string `json:"nombre_profesor"`
	Departamento string `json:"departamento"`
	Actividad    string `json:"actividad"`
	Rubrica      string `json:"rubrica" validate:"required"`
	Texto        string `json:"texto" validate:"required"`
	Flexibilidad *int   `json:"flexibilidad" validate:"omitempty,gte=0,lte=10"`
}

// EvaluateResponse carries the structured evaluation back to the caller.
type EvaluateResponse struct {
	Estudiante        string    `json:"nombre_estudiante"`
	Curso             string    `json:"curso"`
	ContextoDetectado string    `json:"contexto_detectado,omitempty"`
	Resultado         ai.Result `json:"resultado"`
}

// SaveEvaluationRequest persists a finished evaluation. Persistence is a
// separate call so grading never depends on the store being healthy.
type SaveEvaluationRequest struct {
	Estudiante string          `json:"nombre_estudiante" validate:"required,min=2"`
	Curso      string          `json:"curso"`
	Prueba     string          `json:"prueba"`
	Nota       float64         `json:"nota" validate:"gte=1,lte=7"`
	Texto      string          `json:"texto" validate:"required"`
	Rubrica    string          `json:"rubrica"`
	Resultado  json.RawMessage `json:"resultado"`
}

// EvaluationRecordResponse serializes a stored evaluation.
type EvaluationRecordResponse struct {
	ID         uint            `json:"id"`
	Fecha      time.Time       `json:"fecha"`
	Estudiante string          `json:"nombre_estudiante"`
	Curso      string          `json:"curso"`
	Prueba     string          `json:"prueba"`
	Nota       float64         `json:"nota"`
	Texto      string          `json:"texto"`
	Rubrica    string          `json:"rubrica"`
	Resultado  json.RawMessage `json:"resultado,omitempty"`
}

// NewEvaluationRecordResponse converts an Evaluation model into a DTO.
func NewEvaluationRecordResponse(model models.Evaluation) EvaluationRecordResponse {
	return EvaluationRecordResponse{
		ID:         model.ID,
		Fecha:      model.Fecha,
		Estudiante: model.Estudiante,
		Curso:      model.Curso,
		Prueba:     model.Prueba,
		Nota:       model.Nota,
		Texto:      model.Texto,
		Rubrica:    model.Rubrica,
		Resultado:  json.RawMessage(model.Resultado),
	}
}

// NewEvaluationRecordResponseSlice converts evaluation models into DTOs.
func NewEvaluationRecordResponseSlice(models []models.Evaluation) []EvaluationRecordResponse {
	responses := make([]EvaluationRecordResponse, 0, len(models))
	for _, evaluation := range models {
		responses = append(responses, NewEvaluationRecordResponse(evaluation))
	}

	return responses
}
