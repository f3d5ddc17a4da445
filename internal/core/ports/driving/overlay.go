package driving

import (
	"context"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// OverlayService enriches code fragments with type annotations.
//
// ProcessFragment never fails outwardly: every failure mode degrades to
// a stream with fewer or zero annotations, so a single bad fragment can
// never abort the surrounding documentation build.
type OverlayService interface {
	// ProcessFragment tokenizes the fragment and attaches whatever
	// annotations the analyzer produced for it. Always returns a usable
	// stream, degraded or full.
	ProcessFragment(ctx context.Context, fragment domain.CodeFragment) domain.AnnotatedStream

	// ProcessFragments processes many fragments with bounded concurrency.
	// The result slice matches the input order.
	ProcessFragments(ctx context.Context, fragments []domain.CodeFragment) []domain.AnnotatedStream

	// Enabled reports whether the overlay is active for this run.
	Enabled() bool
}
