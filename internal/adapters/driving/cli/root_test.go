package cli

import (
	"github.com/hoverdoc/hoverdoc/internal/core/services"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/clike"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/plain"
)

// setupTestServices wires a passthrough overlay so commands run without
// touching the user's config directory. Returns a cleanup function.
func setupTestServices() func() {
	registry := tokenizers.NewRegistry()
	for _, lang := range clike.Languages() {
		registry.Register(clike.New(lang))
	}
	registry.Register(plain.New())

	oldOverlay := overlayService
	oldLanguages := supportedLanguages

	overlayService = services.NewOverlay(services.OverlayConfig{}, nil, registry, nil)
	supportedLanguages = clike.Languages()

	return func() {
		overlayService = oldOverlay
		supportedLanguages = oldLanguages
	}
}
