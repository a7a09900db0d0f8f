package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/handler"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/pkg/ai"
)

type mockEvaluationService struct {
	lastPayload dto.EvaluateRequest
	response    dto.EvaluateResponse
	err         error
}

func (m *mockEvaluationService) Evaluate(_ context.Context, payload dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.EvaluateResponse{}, m.err
	}
	return m.response, nil
}

func newEvaluationApp(svc service.EvaluationService) *fiber.App {
	app := fiber.New()
	handler.NewEvaluationHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))
	return app
}

func validationFailure(t *testing.T) error {
	t.Helper()
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(dto.EvaluateRequest{})
	require.Error(t, err)
	return err
}

func TestEvaluationHandler_Success(t *testing.T) {
	svc := &mockEvaluationService{response: dto.EvaluateResponse{
		Estudiante:        "Ana Rojas",
		Curso:             "Lenguaje 3B",
		ContextoDetectado: "",
		Resultado: ai.Result{
			Nota:             6.2,
			Retroalimentacion: "Buen desarrollo de las ideas principales.",
		},
	}}
	app := newEvaluationApp(svc)

	flexibility := 8
	payload := dto.EvaluateRequest{
		Estudiante:   "Ana Rojas",
		Curso:        "Lenguaje 3B",
		Rubrica:      "Coherencia 40%, Ortografía 60%",
		Texto:        "El ensayo analiza la obra desde dos perspectivas.",
		Flexibilidad: &flexibility,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.EvaluateResponse `json:"data"`
		Message string               `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "evaluation completed", response.Message)
	require.Equal(t, 6.2, response.Data.Resultado.Nota)
	require.Equal(t, "Ana Rojas", svc.lastPayload.Estudiante)
	require.NotNil(t, svc.lastPayload.Flexibilidad)
	require.Equal(t, 8, *svc.lastPayload.Flexibilidad)
}

func TestEvaluationHandler_InvalidBody(t *testing.T) {
	svc := &mockEvaluationService{}
	app := newEvaluationApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluar", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.lastPayload.Estudiante)
}

func TestEvaluationHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "validation", err: nil, statusCode: fiber.StatusBadRequest},
		{name: "engine not configured", err: service.ErrEvaluatorUnavailable, statusCode: fiber.StatusServiceUnavailable},
		{name: "completion rejected", err: fmt.Errorf("%w: rate limit exceeded", ai.ErrService), statusCode: fiber.StatusBadGateway},
		{name: "malformed content", err: ai.ErrMalformedResponse, statusCode: fiber.StatusBadGateway},
		{name: "network", err: ai.ErrNetwork, statusCode: fiber.StatusBadGateway},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svcErr := tc.err
			if svcErr == nil {
				svcErr = validationFailure(t)
			}

			svc := &mockEvaluationService{err: svcErr}
			app := newEvaluationApp(svc)

			payload := dto.EvaluateRequest{
				Estudiante: "Ana Rojas",
				Curso:      "Lenguaje 3B",
				Rubrica:    "rubrica",
				Texto:      "texto",
			}
			body, err := json.Marshal(payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluar", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.NotEmpty(t, response.Message)
		})
	}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
