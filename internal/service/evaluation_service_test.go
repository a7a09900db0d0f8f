package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/pkg/ai"
)

type fakeResolver struct {
	merged string
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, curso, estudiante string) (string, error) {
	return f.merged, f.err
}

type fakeEvaluator struct {
	directive string
	result    ai.Result
	err       error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, directive string) (ai.Result, error) {
	f.directive = directive
	return f.result, f.err
}

func newValidate() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func TestEvaluatePassesExtractedTextThroughVerbatim(t *testing.T) {
	mocked := ai.Result{
		Nota:              6.0,
		Retroalimentacion: "buen trabajo",
		Fortalezas:        []ai.AnchoredRemark{{Comentario: "claridad", Cita: "Name: Ana"}},
	}
	evaluator := &fakeEvaluator{result: mocked}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	// Text as it comes out of a two-page OCR run, one line per page.
	response, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "claridad 100%",
		Texto:      "Name: Ana\nScore: good",
	})
	require.NoError(t, err)
	require.Contains(t, evaluator.directive, "Name: Ana\nScore: good")
	require.Equal(t, mocked, response.Resultado)
}

func TestEvaluateIncludesResolvedInstructions(t *testing.T) {
	evaluator := &fakeEvaluator{result: ai.Result{Nota: 4.0}}
	resolver := &fakeResolver{merged: "- Estudiante: prefiere ejemplos"}
	svc := NewEvaluationService(resolver, evaluator, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.NoError(t, err)
	require.Contains(t, evaluator.directive, "- Estudiante: prefiere ejemplos")
}

func TestEvaluateProceedsWhenStoreUnavailable(t *testing.T) {
	evaluator := &fakeEvaluator{result: ai.Result{Nota: 5.5}}
	resolver := &fakeResolver{err: ErrStoreUnavailable}
	svc := NewEvaluationService(resolver, evaluator, newValidate(), testLogger())

	response, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.NoError(t, err)
	require.Equal(t, 5.5, response.Resultado.Nota)
	require.NotContains(t, evaluator.directive, "INSTRUCCIONES DEL PROFESOR")
}

func TestEvaluateAppliesFlexibilitySetting(t *testing.T) {
	rigid := 1
	evaluator := &fakeEvaluator{result: ai.Result{}}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante:   "Ana",
		Curso:        "Historia",
		Rubrica:      "r",
		Texto:        "t",
		Flexibilidad: &rigid,
	})
	require.NoError(t, err)
	require.Contains(t, evaluator.directive, flexibilityRigid)
}

func TestEvaluateDefaultsToBalancedEvaluator(t *testing.T) {
	evaluator := &fakeEvaluator{result: ai.Result{}}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.NoError(t, err)
	require.Contains(t, evaluator.directive, flexibilityBalanced)
}

func TestEvaluateStripsMarkupFromPastedText(t *testing.T) {
	evaluator := &fakeEvaluator{result: ai.Result{}}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "<b>claridad</b>",
		Texto:      "<p>Hola <script>alert(1)</script>mundo</p>",
	})
	require.NoError(t, err)
	require.NotContains(t, evaluator.directive, "<p>")
	require.NotContains(t, evaluator.directive, "script")
	require.True(t, strings.Contains(evaluator.directive, "Hola") && strings.Contains(evaluator.directive, "mundo"))
}

func TestEvaluateReportsDispatcherFailureIntact(t *testing.T) {
	evaluator := &fakeEvaluator{err: ai.ErrMalformedResponse}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestEvaluateWithoutEvaluatorFailsFast(t *testing.T) {
	svc := NewEvaluationService(&fakeResolver{}, nil, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Historia",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.ErrorIs(t, err, ErrEvaluatorUnavailable)
}

func TestEvaluateValidatesPayload(t *testing.T) {
	svc := NewEvaluationService(&fakeResolver{}, &fakeEvaluator{}, newValidate(), testLogger())

	_, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{Estudiante: "Ana"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestEvaluateDetectsContextFromCourse(t *testing.T) {
	evaluator := &fakeEvaluator{result: ai.Result{}}
	svc := NewEvaluationService(&fakeResolver{}, evaluator, newValidate(), testLogger())

	response, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{
		Estudiante: "Ana",
		Curso:      "Kinder A",
		Rubrica:    "r",
		Texto:      "t",
	})
	require.NoError(t, err)
	require.Equal(t, ContextEarlyChildhood, response.ContextoDetectado)
	require.False(t, errors.Is(err, ErrEvaluatorUnavailable))
}
