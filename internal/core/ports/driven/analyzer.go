package driven

import (
	"context"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// AnalysisRequest is the input handed to the external analyzer.
type AnalysisRequest struct {
	// Text is the submitted text, possibly wrapped for analysability.
	Text string `json:"text"`

	// Language is the fragment's language tag.
	Language string `json:"language"`
}

// Analyzer invokes the external type-information provider. Its inference
// algorithm is opaque; implementations only translate the wire contract
// into RawAnnotations and the domain error taxonomy:
//
//   - domain.ErrAnalyzerUnavailable: provider not configured/reachable
//   - domain.ErrAnalysisTimeout: deadline exceeded
//   - domain.ErrMalformedOutput: output failed to parse
//   - domain.ErrAnalysisFailed: submitted text did not analyse
//
// Analyze must be idempotent for identical requests: the coordinator
// caches results and may re-fetch after cache eviction.
type Analyzer interface {
	// Analyze returns annotations in submitted-text byte coordinates.
	Analyze(ctx context.Context, req AnalysisRequest) ([]domain.RawAnnotation, error)

	// Ping validates the provider is reachable without analysing anything.
	Ping(ctx context.Context) error

	// Close releases provider resources.
	Close() error
}
