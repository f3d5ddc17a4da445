package driven

import (
	"context"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// Tokenizer converts raw fragment text into an ordered token stream.
// Each tokenizer handles specific language tags.
type Tokenizer interface {
	// SupportedLanguages returns the language tags this tokenizer handles.
	// Empty slice means all languages (fallback tokenizers).
	SupportedLanguages() []string

	// Priority returns the selection priority (higher = preferred).
	// Language-specific tokenizers should return 50-89.
	// Fallback tokenizers should return 1-9.
	Priority() int

	// Tokenize produces tokens that are ordered, non-overlapping, and
	// together cover the entire input.
	Tokenize(ctx context.Context, text string) ([]domain.Token, error)
}

// TokenizerRegistry selects a tokenizer for a language tag.
type TokenizerRegistry interface {
	// Resolve returns the highest-priority tokenizer claiming the tag.
	// Returns domain.ErrUnsupportedLanguage when none does.
	Resolve(language string) (Tokenizer, error)
}
