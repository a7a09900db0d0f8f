package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "libelia",
		Subsystem: "vision",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of document analysis requests, submission through final poll",
	}, []string{"outcome"})

	pollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "libelia",
		Subsystem: "vision",
		Name:      "poll_attempts",
		Help:      "Number of polls needed before an analysis reached a terminal status",
		Buckets:   prometheus.LinearBuckets(1, 1, 15),
	})
)

// Sentinel errors for the three failure classes of document analysis.
var (
	// ErrSubmission indicates the service rejected the document up front.
	// Submission is never retried.
	ErrSubmission = errors.New("document submission rejected")
	// ErrPollExhausted indicates the analysis never reached a terminal
	// status within the configured attempt bound.
	ErrPollExhausted = errors.New("document analysis did not finish in time")
	// ErrAnalysisFailed indicates the service itself reported the analysis
	// as failed.
	ErrAnalysisFailed = errors.New("document analysis failed")
)

// NoTextDetected is returned instead of an empty string when an analysis
// succeeds but the document contains no recognizable text, so callers can
// tell "ran but empty" apart from "not run".
const NoTextDetected = "No se detectó texto en el documento."

// Statuses reported by the read operation endpoint.
const (
	statusNotStarted = "notStarted"
	statusRunning    = "running"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
)

// Config defines configuration options for the vision client.
type Config struct {
	Endpoint        string
	SubscriptionKey string
	Language        string
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPClient      *http.Client
	Logger          zerolog.Logger
}

// Client drives an asynchronous Read analysis to completion: one
// submission, then bounded sequential polling of the returned operation.
type Client struct {
	cfg    Config
	http   *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// New builds a vision client using the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("vision endpoint is required")
	}
	if cfg.SubscriptionKey == "" {
		return nil, fmt.Errorf("vision subscription key is required")
	}

	if cfg.Language == "" {
		cfg.Language = "es"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1200 * time.Millisecond
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 12
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		tracer: otel.Tracer("github.com/vittoclass/libel-IA/pkg/vision"),
		logger: logger.With().Str("component", "vision_client").Logger(),
	}, nil
}

type readResult struct {
	Status        string `json:"status"`
	AnalyzeResult *struct {
		ReadResults []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// Analyze submits the document bytes for OCR and blocks until the analysis
// reaches a terminal status or the poll budget runs out. On success it
// returns the recognized text joined in page order then line order.
func (c *Client) Analyze(parent context.Context, document []byte) (string, error) {
	ctx, span := c.tracer.Start(parent, "vision.analyze", trace.WithAttributes(
		attribute.Int("document.bytes", len(document)),
	))
	defer span.End()

	start := time.Now()
	operationURL, err := c.submit(ctx, document)
	if err != nil {
		analysisDuration.WithLabelValues("submission_error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_failed")
		return "", err
	}

	text, attempts, err := c.poll(ctx, operationURL)
	pollAttempts.Observe(float64(attempts))
	span.SetAttributes(attribute.Int("vision.poll_attempts", attempts))
	if err != nil {
		analysisDuration.WithLabelValues(outcomeLabel(err)).Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	analysisDuration.WithLabelValues("succeeded").Observe(time.Since(start).Seconds())
	c.logger.Info().Int("poll_attempts", attempts).Int("text_len", len(text)).Msg("document analysis succeeded")

	return text, nil
}

// submit posts the raw bytes to the asynchronous analyze endpoint. The
// operation URL comes back in the Operation-Location header; a 202 without
// it is as fatal as a rejection.
func (c *Client) submit(ctx context.Context, document []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/vision/v3.2/read/analyze?language=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), url.QueryEscape(c.cfg.Language))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrSubmission, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	operationURL := strings.TrimSpace(resp.Header.Get("Operation-Location"))
	if operationURL == "" {
		return "", fmt.Errorf("%w: missing Operation-Location header", ErrSubmission)
	}

	return operationURL, nil
}

// poll reads the operation status on a fixed interval. One outstanding
// request at a time; the loop only continues while the status is
// notStarted or running.
func (c *Client) poll(ctx context.Context, operationURL string) (string, int, error) {
	for attempt := 1; attempt <= c.cfg.MaxPollAttempts; attempt++ {
		result, err := c.fetchResult(ctx, operationURL)
		if err != nil {
			return "", attempt, err
		}

		switch result.Status {
		case statusNotStarted, statusRunning:
			c.logger.Debug().Int("attempt", attempt).Str("status", result.Status).Msg("analysis still in progress")
		case statusSucceeded:
			return extractText(result), attempt, nil
		case statusFailed:
			return "", attempt, fmt.Errorf("%w: service reported status %q", ErrAnalysisFailed, result.Status)
		default:
			return "", attempt, fmt.Errorf("%w: unexpected status %q", ErrAnalysisFailed, result.Status)
		}

		if attempt == c.cfg.MaxPollAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", attempt, fmt.Errorf("%w: %v", ErrPollExhausted, ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}
	}

	return "", c.cfg.MaxPollAttempts, fmt.Errorf("%w: still pending after %d attempts", ErrPollExhausted, c.cfg.MaxPollAttempts)
}

func (c *Client) fetchResult(ctx context.Context, operationURL string) (readResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return readResult{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return readResult{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readResult{}, fmt.Errorf("%w: poll returned status %d", ErrAnalysisFailed, resp.StatusCode)
	}

	var result readResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return readResult{}, fmt.Errorf("%w: invalid poll response: %v", ErrAnalysisFailed, err)
	}

	return result, nil
}

// extractText concatenates every recognized line in page order then line
// order, one line per row, with trailing whitespace trimmed.
func extractText(result readResult) string {
	if result.AnalyzeResult == nil {
		return NoTextDetected
	}

	var builder strings.Builder
	for _, page := range result.AnalyzeResult.ReadResults {
		for _, line := range page.Lines {
			builder.WriteString(line.Text)
			builder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return NoTextDetected
	}

	return text
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrPollExhausted):
		return "poll_exhausted"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis_failed"
	default:
		return "error"
	}
}
