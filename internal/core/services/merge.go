package services

import "github.com/hoverdoc/hoverdoc/internal/core/domain"

// Merge wraps a reconciled token sequence into the stream the renderer
// consumes. Pure structural transform: token order and all non-type
// decoration metadata are preserved untouched, and it cannot fail given
// well-formed input from Reconcile.
func Merge(fragment domain.CodeFragment, tokens []domain.DecoratedToken) domain.AnnotatedStream {
	return domain.AnnotatedStream{
		FragmentID: fragment.ID,
		Language:   fragment.Language,
		Tokens:     tokens,
	}
}
