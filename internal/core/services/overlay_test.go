package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/clike"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/plain"
)

// fakeAnalyzer returns canned annotations and counts invocations.
type fakeAnalyzer struct {
	mu          sync.Mutex
	calls       int
	annotations []domain.RawAnnotation
	err         error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ driven.AnalysisRequest) ([]domain.RawAnnotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.annotations, f.err
}

func (f *fakeAnalyzer) Ping(context.Context) error { return f.err }
func (f *fakeAnalyzer) Close() error               { return nil }

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// mapCache is a minimal in-test annotation cache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]domain.RawAnnotation
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]domain.RawAnnotation)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]domain.RawAnnotation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry, ok, nil
}

func (c *mapCache) Put(_ context.Context, key string, annotations []domain.RawAnnotation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = annotations
	return nil
}

func (c *mapCache) Close() error { return nil }

func testRegistry() *tokenizers.Registry {
	return tokenizers.NewRegistry(clike.New("go"), clike.New("rust"), plain.New())
}

func enabledConfig() OverlayConfig {
	return OverlayConfig{
		Enabled:           true,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}
}

func TestOverlay_Disabled(t *testing.T) {
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{{Start: 28, End: 30, Type: "int"}},
	}
	overlay := NewOverlay(OverlayConfig{Enabled: false}, analyzer, testRegistry(), nil)

	stream := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))

	assert.False(t, overlay.Enabled())
	assert.Equal(t, 0, analyzer.callCount())
	assert.NotEmpty(t, stream.Tokens)
	assert.Equal(t, 0, stream.AnnotationCount())
}

func TestOverlay_NoAnalyzerIsPassthrough(t *testing.T) {
	overlay := NewOverlay(enabledConfig(), nil, testRegistry(), nil)

	stream := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))

	assert.False(t, overlay.Enabled())
	assert.NotEmpty(t, stream.Tokens)
	assert.Equal(t, 0, stream.AnnotationCount())
}

func TestOverlay_AnnotatesExactMatch(t *testing.T) {
	// "xs := 1" wraps to "package main\n\nfunc main() {\nxs := 1\n}\n";
	// "xs" sits at [28,30) in submitted coordinates.
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{
			{Start: 28, End: 30, Identifier: "xs", Type: "int"},
		},
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	stream := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))

	require.Equal(t, 1, analyzer.callCount())
	require.Equal(t, 1, stream.AnnotationCount())

	var annotated *domain.DecoratedToken
	for i := range stream.Tokens {
		if stream.Tokens[i].Annotation != nil {
			annotated = &stream.Tokens[i]
		}
	}
	require.NotNil(t, annotated)
	assert.Equal(t, "xs", annotated.Text)
	assert.Equal(t, "int", annotated.Annotation.Type)
	assert.Equal(t, domain.ConfidenceExact, annotated.Annotation.Confidence)
}

func TestOverlay_TokenTextUnchanged(t *testing.T) {
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{
			{Start: 28, End: 30, Identifier: "xs", Type: "int"},
		},
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	text := "xs := 1"
	stream := overlay.ProcessFragment(context.Background(), fragment(text, "go"))

	joined := ""
	for i := range stream.Tokens {
		joined += stream.Tokens[i].Text
	}
	assert.Equal(t, text, joined)
}

func TestOverlay_AnalyzerUnavailableLatches(t *testing.T) {
	analyzer := &fakeAnalyzer{
		err: fmt.Errorf("spawning analyzer: %w", domain.ErrAnalyzerUnavailable),
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	first := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))
	second := overlay.ProcessFragment(context.Background(), fragment("ys := 2", "go"))

	assert.Equal(t, 1, analyzer.callCount(), "unavailability must latch after the first failure")
	assert.Equal(t, 0, first.AnnotationCount())
	assert.Equal(t, 0, second.AnnotationCount())
	assert.NotEmpty(t, first.Tokens)
	assert.NotEmpty(t, second.Tokens)
}

func TestOverlay_AnalysisFailureDegrades(t *testing.T) {
	analyzer := &fakeAnalyzer{
		err: fmt.Errorf("exit status 1: %w", domain.ErrAnalysisFailed),
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	first := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))
	second := overlay.ProcessFragment(context.Background(), fragment("ys := 2", "go"))

	assert.Equal(t, 2, analyzer.callCount(), "an ordinary failure must not latch")
	assert.Equal(t, 0, first.AnnotationCount())
	assert.Equal(t, 0, second.AnnotationCount())
}

func TestOverlay_MalformedAnnotationsDropped(t *testing.T) {
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{
			{Start: -1, End: 5, Type: "bad"},
			{Start: 10, End: 9, Type: "inverted"},
			{Start: 0, End: 9999, Type: "out of range"},
		},
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	stream := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))

	assert.NotEmpty(t, stream.Tokens)
	assert.Equal(t, 0, stream.AnnotationCount())
}

func TestOverlay_SingleByteAnnotationExactMatch(t *testing.T) {
	// "let x: i32 = 1;" wraps to "fn main() {\nlet x: i32 = 1;\n}";
	// "x" sits at [16,17) in submitted coordinates. One byte is enough
	// when the range lands exactly on a token.
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{
			{Start: 16, End: 17, Identifier: "x", Type: "i32"},
		},
	}
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), nil)

	stream := overlay.ProcessFragment(context.Background(), fragment("let x: i32 = 1;", "rust"))

	require.Equal(t, 1, stream.AnnotationCount())

	var annotated *domain.DecoratedToken
	for i := range stream.Tokens {
		if stream.Tokens[i].Annotation != nil {
			annotated = &stream.Tokens[i]
		}
	}
	require.NotNil(t, annotated)
	assert.Equal(t, "x", annotated.Text)
	assert.Equal(t, "i32", annotated.Annotation.Type)
	assert.Equal(t, domain.ConfidenceExact, annotated.Annotation.Confidence)
}

func TestOverlay_CacheSkipsSecondFetch(t *testing.T) {
	analyzer := &fakeAnalyzer{
		annotations: []domain.RawAnnotation{
			{Start: 28, End: 30, Identifier: "xs", Type: "int"},
		},
	}
	cache := newMapCache()
	overlay := NewOverlay(enabledConfig(), analyzer, testRegistry(), cache)

	first := overlay.ProcessFragment(context.Background(), fragment("xs := 1", "go"))

	again := fragment("xs := 1", "go")
	again.ID = "frag-2"
	second := overlay.ProcessFragment(context.Background(), again)

	assert.Equal(t, 1, analyzer.callCount(), "identical text must be served from cache")
	assert.Equal(t, 1, first.AnnotationCount())
	assert.Equal(t, 1, second.AnnotationCount())
	assert.Equal(t, "frag-1", first.FragmentID)
	assert.Equal(t, "frag-2", second.FragmentID)
}

func TestOverlay_ProcessFragmentsPreservesOrder(t *testing.T) {
	overlay := NewOverlay(OverlayConfig{Concurrency: 3}, nil, testRegistry(), nil)

	fragments := make([]domain.CodeFragment, 16)
	for i := range fragments {
		fragments[i] = domain.CodeFragment{
			ID:       fmt.Sprintf("frag-%d", i),
			Text:     fmt.Sprintf("v%d := %d", i, i),
			Language: "go",
			Origin:   domain.Origin{Document: "doc.md", Block: i},
		}
	}

	streams := overlay.ProcessFragments(context.Background(), fragments)

	require.Len(t, streams, len(fragments))
	for i := range fragments {
		assert.Equal(t, fragments[i].ID, streams[i].FragmentID)
		assert.NotEmpty(t, streams[i].Tokens)
	}
}

func TestCacheKey(t *testing.T) {
	base := CacheKey("go", "x := 1")

	assert.Len(t, base, 64)
	assert.Equal(t, base, CacheKey("go", "x := 1"))
	assert.NotEqual(t, base, CacheKey("rust", "x := 1"))
	assert.NotEqual(t, base, CacheKey("go", "x := 2"))
}
