// Package plain provides the fallback tokenizer. It splits text into
// word, whitespace and punctuation runs so fragments in languages
// without a dedicated tokenizer still yield a renderable stream.
package plain

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer is the catch-all word splitter.
type Tokenizer struct{}

// New creates a plain tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// SupportedLanguages returns nil: the plain tokenizer claims all tags.
func (t *Tokenizer) SupportedLanguages() []string {
	return nil
}

// Priority returns the selection priority.
func (t *Tokenizer) Priority() int {
	return 1 // Fallback, below language-specific tokenizers
}

// Tokenize splits text into runs of word characters, whitespace, and
// individual punctuation bytes. The stream covers the input exactly.
func (t *Tokenizer) Tokenize(_ context.Context, text string) ([]domain.Token, error) {
	var tokens []domain.Token
	pos := 0

	for pos < len(text) {
		start := pos
		r, size := utf8.DecodeRuneInString(text[pos:])

		var kind domain.TokenKind
		switch {
		case unicode.IsSpace(r):
			kind = domain.KindWhitespace
			for pos < len(text) {
				r, size = utf8.DecodeRuneInString(text[pos:])
				if !unicode.IsSpace(r) {
					break
				}
				pos += size
			}
		case isWord(r):
			kind = domain.KindIdentifier
			for pos < len(text) {
				r, size = utf8.DecodeRuneInString(text[pos:])
				if !isWord(r) {
					break
				}
				pos += size
			}
		default:
			kind = domain.KindPunctuation
			pos += size
		}

		tokens = append(tokens, domain.Token{
			Span: domain.Span{Start: start, End: pos},
			Kind: kind,
			Text: text[start:pos],
		})
	}

	return tokens, nil
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
