package domain

import "errors"

// Domain errors represent overlay-pipeline failures.
// None of them may abort a documentation build: every one has a defined
// degraded output (fewer or zero annotations).
var (
	// ErrAnalyzerUnavailable indicates the external analyzer is not
	// configured or not reachable. It short-circuits the overlay for the
	// whole run and is reported once, not per fragment.
	ErrAnalyzerUnavailable = errors.New("analyzer unavailable")

	// ErrAnalysisTimeout indicates an analyzer invocation exceeded its
	// deadline. The fragment degrades to no annotations.
	ErrAnalysisTimeout = errors.New("analysis timed out")

	// ErrAnalysisFailed indicates the submitted text did not type-check
	// or compile. Expected and non-fatal: documentation examples are
	// frequently fragments, not complete programs.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrMalformedOutput indicates analyzer output could not be parsed
	// into the annotation schema.
	ErrMalformedOutput = errors.New("malformed analyzer output")

	// ErrUnmappable indicates an annotation endpoint landed inside a
	// synthetic wrapper span and cannot be expressed in original-text
	// coordinates. Local, per annotation, silently dropped.
	ErrUnmappable = errors.New("annotation not mappable to original text")

	// ErrUnsupportedLanguage indicates no tokenizer handles a language tag.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
