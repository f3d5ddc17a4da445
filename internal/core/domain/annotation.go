package domain

import "fmt"

// RawAnnotation is one (range, type) fact reported by the external
// analyzer, in submitted-text byte coordinates. Ranges of distinct
// annotations may overlap (nested expressions); overlap is legal and no
// annotation dominates another at this level.
type RawAnnotation struct {
	// Start and End form a half-open byte range into the submitted text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Identifier is the text slice the annotation targets. Optional hint;
	// empty when the analyzer did not report one.
	Identifier string `json:"identifier,omitempty"`

	// Type is the human-readable inferred type.
	Type string `json:"type"`
}

// Validate checks the annotation range against the submitted text length.
// Malformed annotations are discarded, never propagated.
func (a RawAnnotation) Validate(textLen int) error {
	if a.Start < 0 || a.Start >= a.End || a.End > textLen {
		return fmt.Errorf("%w: annotation range [%d,%d) over %d bytes", ErrInvalidInput, a.Start, a.End, textLen)
	}
	return nil
}

// MappedAnnotation is a RawAnnotation whose range has been converted to
// original-text coordinates by the offset mapper.
type MappedAnnotation struct {
	// Span is the annotation's range in original-text coordinates.
	Span Span

	// Identifier is the optional target-text hint, carried through.
	Identifier string

	// Type is the human-readable inferred type.
	Type string
}
