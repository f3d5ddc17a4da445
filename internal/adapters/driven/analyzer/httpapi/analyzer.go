// Package httpapi provides an analyzer adapter for providers exposed
// as an HTTP service (e.g. a long-running language server wrapped in a
// small HTTP shim).
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:7411"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the HTTP analyzer.
type Config struct {
	// BaseURL is the analyzer service base URL (default: http://localhost:7411).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Analyzer calls the analyzer service over HTTP.
type Analyzer struct {
	client  *http.Client
	baseURL string
}

// analyzeResponse is the service response format.
type analyzeResponse struct {
	Annotations []domain.RawAnnotation `json:"annotations"`
}

// New creates an HTTP analyzer.
func New(cfg Config) *Analyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Analyzer{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// Analyze POSTs the request to /annotate and decodes the annotation set.
func (a *Analyzer) Analyze(ctx context.Context, req driven.AnalysisRequest) ([]domain.RawAnnotation, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.baseURL+"/annotate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisTimeout, err)
		case errors.Is(err, context.Canceled):
			// The run is being torn down, not a slow analyzer.
			return nil, fmt.Errorf("analysis interrupted: %w", err)
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: status %d", domain.ErrAnalysisFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrAnalysisFailed, resp.StatusCode, string(body))
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	return decoded.Annotations, nil
}

// Ping validates the service is reachable via its health endpoint.
func (a *Analyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrAnalyzerUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (a *Analyzer) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
