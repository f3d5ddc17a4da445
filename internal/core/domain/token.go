package domain

// Span is a half-open byte range [Start, End) into a fragment's text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// TokenKind classifies a lexical token for rendering purposes.
type TokenKind string

// Token kinds produced by tokenizers.
const (
	KindIdentifier  TokenKind = "identifier"
	KindKeyword     TokenKind = "keyword"
	KindString      TokenKind = "string"
	KindNumber      TokenKind = "number"
	KindComment     TokenKind = "comment"
	KindPunctuation TokenKind = "punctuation"
	KindWhitespace  TokenKind = "whitespace"
)

// Token is a lexical unit produced by a tokenizer. Tokens within a
// stream are ordered, non-overlapping, and together cover the input.
type Token struct {
	// Span is the token's byte range in original-text coordinates.
	Span Span

	// Kind is the syntactic classification.
	Kind TokenKind

	// Text is the slice of the original text the span covers.
	Text string
}

// MatchConfidence records how an annotation was matched to a token.
type MatchConfidence string

const (
	// ConfidenceExact means the annotation range equalled the token range.
	ConfidenceExact MatchConfidence = "exact"

	// ConfidenceFuzzy means the annotation was matched by containment
	// plus identifier-text equality after offset drift.
	ConfidenceFuzzy MatchConfidence = "fuzzy"
)

// TypeAnnotation is the decoration attached to a token: the inferred
// type as reported by the analyzer, plus how confidently it was matched.
type TypeAnnotation struct {
	// Type is the human-readable inferred type.
	Type string `json:"type"`

	// Confidence is exact or fuzzy.
	Confidence MatchConfidence `json:"confidence"`
}

// DecoratedToken is a token plus its optional type annotation.
// Annotation is nil for the common case (punctuation, keywords, and
// identifiers the analyzer declined to annotate).
type DecoratedToken struct {
	Token

	Annotation *TypeAnnotation `json:"annotation,omitempty"`
}

// AnnotatedStream is the ordered decorated-token sequence for one
// fragment, the engine's sole externally visible artifact.
type AnnotatedStream struct {
	// FragmentID links back to the CodeFragment.
	FragmentID string

	// Language is the fragment's language tag, carried for the renderer.
	Language string

	// Tokens preserves tokenizer order and text exactly.
	Tokens []DecoratedToken
}

// AnnotationCount returns the number of decorated tokens in the stream.
func (s AnnotatedStream) AnnotationCount() int {
	count := 0
	for i := range s.Tokens {
		if s.Tokens[i].Annotation != nil {
			count++
		}
	}
	return count
}
