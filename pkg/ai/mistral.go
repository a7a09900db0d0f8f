package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "libelia",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "libelia",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model", "kind"})
)

// resultSchema constrains the JSON object the model must return. Content
// that does not satisfy it is rejected as malformed; it is never executed
// or interpreted as anything but data.
const resultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nota", "retroalimentacion", "analisis_por_criterio", "fortalezas", "sugerencias"],
  "properties": {
    "nota": {"type": "number", "minimum": 1.0, "maximum": 7.0},
    "retroalimentacion": {"type": "string"},
    "analisis_por_criterio": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["criterio", "analisis"],
        "properties": {
          "criterio": {"type": "string"},
          "analisis": {"type": "string"}
        }
      }
    },
    "fortalezas": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["comentario", "cita"],
        "properties": {
          "comentario": {"type": "string"},
          "cita": {"type": "string"}
        }
      }
    },
    "sugerencias": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["comentario", "cita"],
        "properties": {
          "comentario": {"type": "string"},
          "cita": {"type": "string"}
        }
      }
    }
  }
}`

// MistralConfig defines configuration options for the Mistral evaluator.
type MistralConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// MistralEvaluator implements Evaluator against the Mistral chat
// completion API, which speaks the OpenAI wire protocol.
type MistralEvaluator struct {
	client *openai.Client
	cfg    MistralConfig
	schema *jsonschema.Schema
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewMistralEvaluator builds a new evaluator using the provided configuration.
func NewMistralEvaluator(cfg MistralConfig) (*MistralEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-large-latest"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		// Generation latency for a full rubric evaluation is significant.
		cfg.Timeout = 2 * time.Minute
	}

	schema, err := jsonschema.CompileString("evaluacion.schema.json", resultSchema)
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &MistralEvaluator{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		schema: schema,
		tracer: otel.Tracer("github.com/vittoclass/libel-IA/pkg/ai"),
		logger: logger.With().Str("component", "mistral_evaluator").Logger(),
	}, nil
}

// Evaluate sends the composed directive as the sole user message and
// parses the schema-constrained response.
func (e *MistralEvaluator) Evaluate(parent context.Context, directive string) (Result, error) {
	ctx, span := e.tracer.Start(parent, "mistral.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.Int("directive.len", len(directive)),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: directive,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		classified := e.classify(err)
		aiFailures.WithLabelValues(e.cfg.Model, failureKind(classified)).Inc()
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		return Result{}, classified
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
		aiFailures.WithLabelValues(e.cfg.Model, failureKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := e.parseResult(content)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model, failureKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	span.SetAttributes(attribute.Float64("evaluation.nota", result.Nota))

	return result, nil
}

// classify maps a transport-layer failure onto the error taxonomy. An API
// error carries the service's own message; anything without a response is
// a network failure.
func (e *MistralEvaluator) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %s", ErrService, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: status %d", ErrService, reqErr.HTTPStatusCode)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// parseResult treats the message content strictly as data: unmarshal,
// validate against the schema, then bind to the typed result.
func (e *MistralEvaluator) parseResult(content string) (Result, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := e.schema.Validate(payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if result.Nota < 1 {
		result.Nota = 1
	}
	if result.Nota > 7 {
		result.Nota = 7
	}

	return result, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrService):
		return "service"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "network"
	}
}
