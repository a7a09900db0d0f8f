package ai

import (
	"context"
	"errors"
)

// Failure classes for a completion call. A single call is never retried;
// the classified error is surfaced to the caller intact.
var (
	// ErrNetwork indicates no response was obtained from the service.
	ErrNetwork = errors.New("completion service unreachable")
	// ErrService indicates the service answered with an error status. The
	// wrapped detail carries the service's own message when parseable.
	ErrService = errors.New("completion service error")
	// ErrMalformedResponse indicates the response body was not valid
	// structured data or omitted required fields.
	ErrMalformedResponse = errors.New("malformed evaluation response")
)

// CriterionAnalysis is the model's commentary on a single rubric criterion.
type CriterionAnalysis struct {
	Criterio string `json:"criterio"`
	Analisis string `json:"analisis"`
}

// AnchoredRemark is a qualitative claim backed by a short verbatim
// quotation from the student's own text.
type AnchoredRemark struct {
	Comentario string `json:"comentario"`
	Cita       string `json:"cita"`
}

// Result is the structured evaluation returned by the completion service.
type Result struct {
	Nota                float64                `json:"nota"`
	Retroalimentacion   string                 `json:"retroalimentacion"`
	AnalisisPorCriterio []CriterionAnalysis    `json:"analisis_por_criterio"`
	Fortalezas          []AnchoredRemark       `json:"fortalezas"`
	Sugerencias         []AnchoredRemark       `json:"sugerencias"`
	Raw                 map[string]interface{} `json:"raw,omitempty"`
}

// Evaluator sends a fully composed directive to a completion service and
// returns its structured evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, directive string) (Result, error)
}
