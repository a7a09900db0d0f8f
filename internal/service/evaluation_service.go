package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/pkg/ai"
)

// ErrEvaluatorUnavailable indicates the completion service credentials
// were not configured, so grading cannot run.
var ErrEvaluatorUnavailable = errors.New("evaluation engine not configured")

const defaultFlexibility = 5

// EvaluationService runs the grading pipeline: resolve instructions,
// compose the directive, dispatch it to the evaluation engine.
type EvaluationService interface {
	Evaluate(ctx context.Context, payload dto.EvaluateRequest) (dto.EvaluateResponse, error)
}

type evaluationService struct {
	resolver  InstructionResolver
	evaluator ai.Evaluator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewEvaluationService constructs an EvaluationService instance. A nil
// evaluator disables the capability without preventing startup.
func NewEvaluationService(resolver InstructionResolver, evaluator ai.Evaluator, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		resolver:  resolver,
		evaluator: evaluator,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, payload dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	tracer := otel.Tracer("github.com/vittoclass/libel-IA/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.run")
	span.SetAttributes(
		attribute.String("evaluation.curso", payload.Curso),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluateResponse{}, err
	}

	if s.evaluator == nil {
		span.SetStatus(codes.Error, "evaluator_unavailable")
		return dto.EvaluateResponse{}, ErrEvaluatorUnavailable
	}

	// Pasted text may carry markup from word processors; the directive
	// wants plain text only.
	texto := s.stripMarkup(payload.Texto)
	rubrica := s.stripMarkup(payload.Rubrica)

	instrucciones, err := s.resolver.Resolve(ctx, payload.Curso, payload.Estudiante)
	if err != nil {
		// Personalization must never block grading.
		s.logger.Warn().Err(err).Msg("proceeding without stored instructions")
		span.AddEvent("instructions_unavailable")
		instrucciones = ""
	}

	flexibilidad := defaultFlexibility
	if payload.Flexibilidad != nil {
		flexibilidad = *payload.Flexibilidad
	}

	directive := ComposePrompt(PromptInput{
		Estudiante:    payload.Estudiante,
		Curso:         payload.Curso,
		Profesor:      payload.Profesor,
		Departamento:  payload.Departamento,
		Actividad:     payload.Actividad,
		Instrucciones: instrucciones,
		Rubrica:       rubrica,
		Texto:         texto,
		Flexibilidad:  flexibilidad,
	})

	result, err := s.evaluator.Evaluate(ctx, directive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch_failed")
		return dto.EvaluateResponse{}, err
	}

	span.SetAttributes(attribute.Float64("evaluation.nota", result.Nota))
	s.logger.Info().Str("estudiante", payload.Estudiante).Float64("nota", result.Nota).Msg("evaluation completed")

	return dto.EvaluateResponse{
		Estudiante:        payload.Estudiante,
		Curso:             payload.Curso,
		ContextoDetectado: DetectContext(payload.Curso, payload.Actividad),
		Resultado:         result,
	}, nil
}

func (s *evaluationService) stripMarkup(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(input)))
}
