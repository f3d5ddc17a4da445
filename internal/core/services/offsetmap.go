package services

import (
	"fmt"
	"strings"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// SubmittedUnit is a fragment prepared for external analysis: the text
// actually submitted, plus the piecewise mapping back to original-text
// coordinates. Computed once per fragment and discarded after
// annotation remapping.
type SubmittedUnit struct {
	// Fragment is the source fragment.
	Fragment domain.CodeFragment

	// Text is the submitted text, possibly wrapped.
	Text string

	// Wrapped reports whether any synthetic bytes were inserted.
	Wrapped bool

	segments []mapSegment
}

// mapSegment maps the submitted-text range [SubStart, SubEnd) onto
// original-text offsets via a constant shift: original = submitted - Delta.
// Submitted offsets outside every segment fall inside synthetic spans.
type mapSegment struct {
	SubStart int
	SubEnd   int
	Delta    int
}

// wrapTemplate describes how to make a statement-level fragment of one
// language independently analyzable.
type wrapTemplate struct {
	// Head is prepended before everything (e.g. a package clause).
	Head string

	// Prefix opens the synthetic entry point, Suffix closes it.
	Prefix string
	Suffix string

	// DirectivePrefix marks hoistable lines (imports) that must stay
	// outside the entry point.
	DirectivePrefix string

	// EntryMarker detects fragments that already carry an entry point.
	EntryMarker string

	// ItemKeywords are leading keywords of item-level code that is
	// analyzable without an entry point.
	ItemKeywords []string

	// HeadMarker detects fragments that already carry the head clause.
	HeadMarker string
}

// wrapTemplates holds the shipped per-language wrap policies. Languages
// not listed are submitted verbatim; the identity mapping then applies.
var wrapTemplates = map[string]wrapTemplate{
	"go": {
		Head:            "package main\n\n",
		Prefix:          "func main() {\n",
		Suffix:          "\n}\n",
		DirectivePrefix: "import ",
		EntryMarker:     "func main",
		HeadMarker:      "package ",
		ItemKeywords: []string{
			"func ", "type ", "const ", "var ", "//go:",
		},
	},
	"rust": {
		Prefix:          "fn main() {\n",
		Suffix:          "\n}",
		DirectivePrefix: "use ",
		EntryMarker:     "fn main",
		ItemKeywords: []string{
			"fn ", "struct ", "enum ", "impl ", "trait ", "mod ",
			"pub ", "extern ", "const ", "static ", "type ", "#[", "#!",
		},
	},
}

// OffsetMapper prepares fragments for analysis and translates analyzer
// offsets back into original-text coordinates.
type OffsetMapper struct{}

// NewOffsetMapper creates an offset mapper.
func NewOffsetMapper() *OffsetMapper {
	return &OffsetMapper{}
}

// Prepare decides whether the fragment needs a synthetic wrapper to be
// independently analyzable and records the exact spans inserted, so the
// inverse map is a deterministic piecewise function of offset.
//
// Leading import/use lines are hoisted above the entry point and keep
// their relative order; everything after them lands inside the wrapper
// body. Fragments that already carry an entry point, or that start with
// item-level keywords, are submitted with at most the head clause added.
func (m *OffsetMapper) Prepare(fragment domain.CodeFragment) SubmittedUnit {
	text := fragment.Text
	tmpl, ok := wrapTemplates[fragment.Language]
	if !ok {
		return identityUnit(fragment)
	}

	trimmed := strings.TrimLeft(text, " \t\r\n")

	if tmpl.HeadMarker != "" && strings.HasPrefix(trimmed, tmpl.HeadMarker) {
		// Already a complete compilation unit.
		return identityUnit(fragment)
	}

	if !needsEntryPoint(trimmed, text, tmpl) {
		return headOnlyUnit(fragment, tmpl)
	}

	// Hoist leading directive lines so they stay outside the entry point.
	hoistLen := hoistableLen(text, tmpl.DirectivePrefix)
	rest := text[hoistLen:]
	if strings.TrimSpace(rest) == "" {
		// Only directives, nothing to wrap.
		return headOnlyUnit(fragment, tmpl)
	}

	var b strings.Builder
	b.WriteString(tmpl.Head)
	b.WriteString(text[:hoistLen])
	b.WriteString(tmpl.Prefix)
	b.WriteString(rest)
	b.WriteString(tmpl.Suffix)

	headLen := len(tmpl.Head)
	prefixLen := len(tmpl.Prefix)

	var segments []mapSegment
	if hoistLen > 0 {
		segments = append(segments, mapSegment{
			SubStart: headLen,
			SubEnd:   headLen + hoistLen,
			Delta:    headLen,
		})
	}
	segments = append(segments, mapSegment{
		SubStart: headLen + hoistLen + prefixLen,
		SubEnd:   headLen + hoistLen + prefixLen + len(rest),
		Delta:    headLen + prefixLen,
	})

	return SubmittedUnit{
		Fragment: fragment,
		Text:     b.String(),
		Wrapped:  true,
		segments: segments,
	}
}

// Remap converts a RawAnnotation from submitted-text coordinates to
// original-text coordinates. An annotation whose range touches a
// synthetic span (the wrapper's own tokens, such as its entry-point
// name) is unmappable and must never be surfaced as if it described
// user code.
func (m *OffsetMapper) Remap(unit SubmittedUnit, raw domain.RawAnnotation) (domain.MappedAnnotation, error) {
	if err := raw.Validate(len(unit.Text)); err != nil {
		return domain.MappedAnnotation{}, err
	}

	for _, seg := range unit.segments {
		if raw.Start < seg.SubStart || raw.End > seg.SubEnd {
			continue
		}
		span := domain.Span{Start: raw.Start - seg.Delta, End: raw.End - seg.Delta}
		if span.End > len(unit.Fragment.Text) {
			break
		}
		return domain.MappedAnnotation{
			Span:       span,
			Identifier: raw.Identifier,
			Type:       raw.Type,
		}, nil
	}

	return domain.MappedAnnotation{}, fmt.Errorf("%w: [%d,%d)", domain.ErrUnmappable, raw.Start, raw.End)
}

// identityUnit submits the fragment verbatim with a single identity segment.
func identityUnit(fragment domain.CodeFragment) SubmittedUnit {
	return SubmittedUnit{
		Fragment: fragment,
		Text:     fragment.Text,
		segments: []mapSegment{{SubStart: 0, SubEnd: len(fragment.Text), Delta: 0}},
	}
}

// headOnlyUnit prepends just the head clause (a pure prefix insertion,
// so the inverse map is a single scalar delta).
func headOnlyUnit(fragment domain.CodeFragment, tmpl wrapTemplate) SubmittedUnit {
	if tmpl.Head == "" {
		return identityUnit(fragment)
	}
	headLen := len(tmpl.Head)
	return SubmittedUnit{
		Fragment: fragment,
		Text:     tmpl.Head + fragment.Text,
		Wrapped:  true,
		segments: []mapSegment{{
			SubStart: headLen,
			SubEnd:   headLen + len(fragment.Text),
			Delta:    headLen,
		}},
	}
}

// needsEntryPoint reports whether the fragment is statement-level code
// that requires a synthetic entry point for analysis.
func needsEntryPoint(trimmed, full string, tmpl wrapTemplate) bool {
	if tmpl.EntryMarker != "" && strings.Contains(full, tmpl.EntryMarker) {
		return false
	}
	for _, kw := range tmpl.ItemKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return false
		}
	}
	return true
}

// hoistableLen returns the byte length of the leading run of directive
// and blank lines.
func hoistableLen(text, directivePrefix string) int {
	if directivePrefix == "" {
		return 0
	}
	hoisted := 0
	sawDirective := false
	for _, line := range strings.SplitAfter(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, directivePrefix) {
			if strings.HasPrefix(stripped, directivePrefix) {
				sawDirective = true
			}
			hoisted += len(line)
			continue
		}
		break
	}
	if !sawDirective {
		return 0
	}
	return hoisted
}
