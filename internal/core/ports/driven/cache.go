package driven

import (
	"context"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// AnnotationCache stores analyzer results keyed by submitted text.
// Identical code blocks recur across a documentation build; the cache
// avoids redundant external invocations for them.
//
// Implementations must be safe for concurrent use. A write for a given
// key happens at most once per distinct submitted text within a build;
// concurrent misses on the same key may tolerate duplicate computation,
// since analysis is idempotent.
type AnnotationCache interface {
	// Get returns the cached annotations for key, and whether they exist.
	// A cached empty slice is a valid hit (the analyzer reported nothing).
	Get(ctx context.Context, key string) ([]domain.RawAnnotation, bool, error)

	// Put stores annotations under key.
	Put(ctx context.Context, key string, annotations []domain.RawAnnotation) error

	// Close releases cache resources.
	Close() error
}
