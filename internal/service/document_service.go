package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/dto"
)

// ErrOCRUnavailable indicates the document analysis service credentials
// were not configured.
var ErrOCRUnavailable = errors.New("document analysis not configured")

// ErrUnsupportedDocument indicates the uploaded file is not a readable
// document type.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// DocumentAnalyzer extracts text from a scanned document.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, document []byte) (string, error)
}

// FileUploader stores a file and returns a public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentService gates uploads by type, runs OCR, and optionally archives
// the original scan.
type DocumentService interface {
	Extract(ctx context.Context, filename string, document []byte) (dto.OCRResponse, error)
}

type documentService struct {
	analyzer DocumentAnalyzer
	archiver FileUploader
	logger   zerolog.Logger
}

// NewDocumentService constructs a DocumentService instance. A nil analyzer
// disables the capability; a nil archiver skips archiving.
func NewDocumentService(analyzer DocumentAnalyzer, archiver FileUploader, logger zerolog.Logger) DocumentService {
	return &documentService{
		analyzer: analyzer,
		archiver: archiver,
		logger:   logger.With().Str("component", "document_service").Logger(),
	}
}

func (s *documentService) Extract(ctx context.Context, filename string, document []byte) (dto.OCRResponse, error) {
	if s.analyzer == nil {
		return dto.OCRResponse{}, ErrOCRUnavailable
	}

	if err := validateDocumentType(document); err != nil {
		return dto.OCRResponse{}, err
	}

	texto, err := s.analyzer.Analyze(ctx, document)
	if err != nil {
		return dto.OCRResponse{}, err
	}

	response := dto.OCRResponse{Texto: texto}

	// Archiving is a side effect; its failure never discards the text.
	if s.archiver != nil {
		url, err := s.archiver.Upload(ctx, filename, bytes.NewReader(document))
		if err != nil {
			s.logger.Warn().Err(err).Str("filename", filename).Msg("failed to archive scanned document")
		} else {
			response.ArchivoURL = url
		}
	}

	return response, nil
}

func validateDocumentType(document []byte) error {
	mime := mimetype.Detect(document)

	allowed := []string{"image/png", "image/jpeg", "image/tiff", "image/bmp", "application/pdf"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedDocument, mime.String())
}
