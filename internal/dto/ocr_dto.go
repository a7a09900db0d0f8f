package dto

// OCRResponse returns the text extracted from a scanned document, plus the
// archive URL when document archiving is configured.
type OCRResponse struct {
	Texto      string `json:"texto"`
	ArchivoURL string `json:"archivo_url,omitempty"`
}
