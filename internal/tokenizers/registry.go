// Package tokenizers provides the tokenizer registry and the shipped
// tokenizer implementations. The registry selects a tokenizer for a
// fragment's language tag by priority, so every language degrades to at
// least the plain fallback and always yields a renderable stream.
package tokenizers

import (
	"fmt"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TokenizerRegistry = (*Registry)(nil)

// Registry selects tokenizers by language tag and priority.
type Registry struct {
	tokenizers []driven.Tokenizer
}

// NewRegistry creates a registry with the given tokenizers.
func NewRegistry(tokenizers ...driven.Tokenizer) *Registry {
	return &Registry{tokenizers: tokenizers}
}

// Register adds a tokenizer to the registry.
func (r *Registry) Register(t driven.Tokenizer) {
	r.tokenizers = append(r.tokenizers, t)
}

// Resolve returns the highest-priority tokenizer claiming the language
// tag. Tokenizers with an empty language list claim every tag.
func (r *Registry) Resolve(language string) (driven.Tokenizer, error) {
	var best driven.Tokenizer
	for _, t := range r.tokenizers {
		if !claims(t, language) {
			continue
		}
		if best == nil || t.Priority() > best.Priority() {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, language)
	}
	return best, nil
}

// claims reports whether the tokenizer handles the language tag.
func claims(t driven.Tokenizer, language string) bool {
	supported := t.SupportedLanguages()
	if len(supported) == 0 {
		return true
	}
	for _, lang := range supported {
		if lang == language {
			return true
		}
	}
	return false
}
