package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driving"
	"github.com/hoverdoc/hoverdoc/internal/logger"
)

// Ensure Overlay implements the interface.
var _ driving.OverlayService = (*Overlay)(nil)

// Default configuration values.
const (
	DefaultConcurrency       = 4
	DefaultFetchTimeout      = 30 * time.Second
	DefaultRequestsPerSecond = 4.0
	DefaultBurst             = 2
)

// OverlayConfig holds coordinator configuration. The enablement switch
// is read once at startup and passed in here explicitly, so tests can
// run multiple configurations in isolation.
type OverlayConfig struct {
	// Enabled activates external analysis. When false every fragment is
	// a constant-time passthrough of the tokenizer output.
	Enabled bool

	// Concurrency bounds simultaneous fragment processing in
	// ProcessFragments (default 4).
	Concurrency int

	// FetchTimeout is the per-invocation analyzer deadline (default 30s).
	FetchTimeout time.Duration

	// RequestsPerSecond and Burst configure the analyzer rate limiter.
	RequestsPerSecond float64
	Burst             int
}

// Overlay coordinates the per-fragment pipeline: prepare, fetch, remap,
// reconcile, merge. It is the last line of defence ensuring a single
// bad fragment never aborts the documentation build.
type Overlay struct {
	cfg        OverlayConfig
	analyzer   driven.Analyzer
	tokenizers driven.TokenizerRegistry
	cache      driven.AnnotationCache
	mapper     *OffsetMapper
	limiter    *rate.Limiter

	// unavailable latches after the first ErrAnalyzerUnavailable so the
	// condition is reported once, not per fragment.
	unavailable     atomic.Bool
	unavailableOnce sync.Once
}

// NewOverlay creates the overlay coordinator. The analyzer and cache
// may be nil: without an analyzer the service runs in passthrough mode,
// and without a cache every fragment is fetched.
func NewOverlay(
	cfg OverlayConfig,
	analyzer driven.Analyzer,
	tokenizers driven.TokenizerRegistry,
	cache driven.AnnotationCache,
) *Overlay {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	return &Overlay{
		cfg:        cfg,
		analyzer:   analyzer,
		tokenizers: tokenizers,
		cache:      cache,
		mapper:     NewOffsetMapper(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Enabled reports whether external analysis is active for this run.
func (o *Overlay) Enabled() bool {
	return o.cfg.Enabled && o.analyzer != nil
}

// ProcessFragment runs the overlay pipeline for one fragment. It never
// fails outwardly: on any failure the fragment renders exactly as it
// would with the overlay disabled: no missing code, only absent hover
// metadata.
func (o *Overlay) ProcessFragment(ctx context.Context, fragment domain.CodeFragment) domain.AnnotatedStream {
	tokens := o.tokenize(ctx, fragment)

	if !o.Enabled() || o.unavailable.Load() {
		return passthrough(fragment, tokens)
	}

	mapped := o.annotations(ctx, fragment)
	if len(mapped) == 0 {
		return passthrough(fragment, tokens)
	}

	return Merge(fragment, Reconcile(tokens, mapped))
}

// ProcessFragments processes fragments concurrently, bounded by the
// configured concurrency limit to cap simultaneous analyzer
// invocations. Results match the input order. Fragments are
// independent: no ordering dependency exists between them.
func (o *Overlay) ProcessFragments(ctx context.Context, fragments []domain.CodeFragment) []domain.AnnotatedStream {
	results := make([]domain.AnnotatedStream, len(fragments))
	sem := make(chan struct{}, o.cfg.Concurrency)

	var wg sync.WaitGroup
	for i := range fragments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.ProcessFragment(ctx, fragments[i])
		}(i)
	}
	wg.Wait()

	return results
}

// annotations runs prepare → fetch → remap and returns the annotations
// in original-text coordinates. Any panic or error degrades to nil: the
// coordinator treats anything beyond the documented fetch errors as a
// failed analysis.
func (o *Overlay) annotations(ctx context.Context, fragment domain.CodeFragment) (mapped []domain.MappedAnnotation) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("overlay panic for %s block %d: %v", fragment.Origin.Document, fragment.Origin.Block, r)
			mapped = nil
		}
	}()

	unit := o.mapper.Prepare(fragment)

	raw, err := o.fetch(ctx, unit)
	if err != nil {
		if errors.Is(err, domain.ErrAnalyzerUnavailable) {
			o.unavailable.Store(true)
			o.unavailableOnce.Do(func() {
				logger.Warn("analyzer unavailable, disabling overlay for this run: %v", err)
			})
		} else {
			logger.Debug("no annotations for %s block %d: %v", fragment.Origin.Document, fragment.Origin.Block, err)
		}
		return nil
	}

	for _, annotation := range raw {
		if err := annotation.Validate(len(unit.Text)); err != nil {
			logger.Debug("dropping malformed annotation: %v", err)
			continue
		}
		m, err := o.mapper.Remap(unit, annotation)
		if err != nil {
			logger.Debug("dropping annotation: %v", err)
			continue
		}
		mapped = append(mapped, m)
	}

	return mapped
}

// fetch returns analyzer annotations for the unit, consulting the cache
// first. Cache writes happen after successful fetches only; concurrent
// misses on the same key may compute twice, which is safe because
// analysis is idempotent.
func (o *Overlay) fetch(ctx context.Context, unit SubmittedUnit) ([]domain.RawAnnotation, error) {
	key := CacheKey(unit.Fragment.Language, unit.Text)

	if o.cache != nil {
		if cached, ok, err := o.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		} else if err != nil {
			logger.Debug("cache get: %v", err)
		}
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	raw, err := o.analyzer.Analyze(fetchCtx, driven.AnalysisRequest{
		Text:     unit.Text,
		Language: unit.Fragment.Language,
	})
	if err != nil {
		return nil, err
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, raw); err != nil {
			logger.Debug("cache put: %v", err)
		}
	}

	return raw, nil
}

// tokenize resolves a tokenizer for the fragment's language and runs it.
// With no usable tokenizer the stream is empty and the renderer falls
// back to the raw fragment text.
func (o *Overlay) tokenize(ctx context.Context, fragment domain.CodeFragment) []domain.Token {
	tokenizer, err := o.tokenizers.Resolve(fragment.Language)
	if err != nil {
		logger.Warn("no tokenizer for %q: %v", fragment.Language, err)
		return nil
	}
	tokens, err := tokenizer.Tokenize(ctx, fragment.Text)
	if err != nil {
		logger.Warn("tokenize %s block %d: %v", fragment.Origin.Document, fragment.Origin.Block, err)
		return nil
	}
	return tokens
}

// passthrough returns the plain tokenizer output with no annotations.
func passthrough(fragment domain.CodeFragment, tokens []domain.Token) domain.AnnotatedStream {
	decorated := make([]domain.DecoratedToken, len(tokens))
	for i, tok := range tokens {
		decorated[i] = domain.DecoratedToken{Token: tok}
	}
	return Merge(fragment, decorated)
}

// CacheKey derives the cache key for a submitted text and language tag.
func CacheKey(language, submittedText string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(submittedText))
	return hex.EncodeToString(h.Sum(nil))
}
