package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/handler"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/pkg/vision"
)

type mockDocumentService struct {
	lastFilename string
	lastDocument []byte
	response     dto.OCRResponse
	err          error
}

func (m *mockDocumentService) Extract(_ context.Context, filename string, document []byte) (dto.OCRResponse, error) {
	m.lastFilename = filename
	m.lastDocument = document
	if m.err != nil {
		return dto.OCRResponse{}, m.err
	}
	return m.response, nil
}

func newOCRApp(svc service.DocumentService) *fiber.App {
	app := fiber.New()
	handler.NewOCRHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))
	return app
}

func multipartDocument(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestOCRHandler_Success(t *testing.T) {
	svc := &mockDocumentService{response: dto.OCRResponse{
		Texto:      "Nombre: Ana\nRespuesta: fotosíntesis",
		ArchivoURL: "https://res.cloudinary.com/demo/prueba.png",
	}}
	app := newOCRApp(svc)

	body, contentType := multipartDocument(t, "prueba.png", []byte{0x89, 0x50, 0x4E, 0x47})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool            `json:"success"`
		Data    dto.OCRResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, svc.response.Texto, response.Data.Texto)
	require.Equal(t, svc.response.ArchivoURL, response.Data.ArchivoURL)
	require.Equal(t, "prueba.png", svc.lastFilename)
	require.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, svc.lastDocument)
}

func TestOCRHandler_MissingFile(t *testing.T) {
	svc := &mockDocumentService{}
	app := newOCRApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOCRHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "ocr not configured", err: service.ErrOCRUnavailable, statusCode: fiber.StatusServiceUnavailable},
		{name: "unsupported type", err: fmt.Errorf("%w: text/plain", service.ErrUnsupportedDocument), statusCode: fiber.StatusBadRequest},
		{name: "submission rejected", err: vision.ErrSubmission, statusCode: fiber.StatusBadGateway},
		{name: "poll exhausted", err: vision.ErrPollExhausted, statusCode: fiber.StatusGatewayTimeout},
		{name: "analysis failed", err: vision.ErrAnalysisFailed, statusCode: fiber.StatusBadGateway},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockDocumentService{err: tc.err}
			app := newOCRApp(svc)

			body, contentType := multipartDocument(t, "prueba.png", []byte("fake"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
