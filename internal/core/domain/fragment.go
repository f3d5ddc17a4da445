package domain

// Origin identifies where a code fragment came from, for error
// reporting and output keying.
type Origin struct {
	// Document is the path or URI of the source document.
	Document string

	// Block is the zero-based index of the fenced block within the document.
	Block int
}

// CodeFragment is one fenced code example extracted from a documentation
// source. It is immutable: created once by the extraction layer and
// consumed once per render pass.
type CodeFragment struct {
	// ID is the unique identifier for the fragment.
	ID string

	// Text is the fragment exactly as displayed, before any wrapping
	// or normalisation applied for analysis.
	Text string

	// Language is the fence's language tag (e.g. "go", "rust").
	// Empty when the fence carried no info string.
	Language string

	// Origin records the document and block index the fragment came from.
	Origin Origin
}
