package mcp

import (
	"context"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// mockOverlayService is a mock implementation of driving.OverlayService.
type mockOverlayService struct {
	stream  domain.AnnotatedStream
	enabled bool
	calls   int
}

func (m *mockOverlayService) ProcessFragment(
	_ context.Context,
	fragment domain.CodeFragment,
) domain.AnnotatedStream {
	m.calls++
	stream := m.stream
	if stream.FragmentID == "" {
		stream.FragmentID = fragment.ID
	}
	if stream.Language == "" {
		stream.Language = fragment.Language
	}
	return stream
}

func (m *mockOverlayService) ProcessFragments(
	ctx context.Context,
	fragments []domain.CodeFragment,
) []domain.AnnotatedStream {
	streams := make([]domain.AnnotatedStream, len(fragments))
	for i := range fragments {
		streams[i] = m.ProcessFragment(ctx, fragments[i])
	}
	return streams
}

func (m *mockOverlayService) Enabled() bool {
	return m.enabled
}
