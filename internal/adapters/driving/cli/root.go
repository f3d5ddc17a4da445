// Package cli implements the hoverdoc command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/analyzer/httpapi"
	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/analyzer/subprocess"
	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/cache/memory"
	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/cache/sqlite"
	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/config/file"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driving"
	"github.com/hoverdoc/hoverdoc/internal/core/services"
	"github.com/hoverdoc/hoverdoc/internal/logger"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/clike"
	"github.com/hoverdoc/hoverdoc/internal/tokenizers/plain"
)

// version is set at build time via ldflags.
var version = "dev"

// envToggle is the environment variable that overrides the configured
// enablement switch. "1" or "true" enables, "0" or "false" disables,
// anything else defers to config.
const envToggle = "HOVERDOC_TYPES"

var (
	verbose   bool
	configDir string
)

// Services wired by ensureServices. Package-level so commands and tests
// can swap them.
var (
	configStore        *file.ConfigStore
	overlayService     driving.OverlayService
	annotationCache    driven.AnnotationCache
	supportedLanguages []string
)

var rootCmd = &cobra.Command{
	Use:   "hoverdoc",
	Short: "Type annotation overlay for documentation code blocks",
	Long: `Hoverdoc tokenizes fenced code blocks in markdown documents and
attaches externally computed type annotations to the tokens, producing
annotated token streams for documentation renderers.

Analysis failures never fail a build: fragments degrade to plain
syntax-highlighted output with no annotations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.hoverdoc)")
}

// Execute runs the root command with the given context. Watch and MCP
// serve run until the context is cancelled.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// ensureServices wires the overlay pipeline from configuration. Commands
// that need the pipeline call it before running; idempotent so tests can
// pre-wire mocks.
func ensureServices() error {
	if overlayService != nil {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store

	registry := tokenizers.NewRegistry()
	for _, lang := range clike.Languages() {
		registry.Register(clike.New(lang))
	}
	registry.Register(plain.New())
	supportedLanguages = clike.Languages()

	analyzer := buildAnalyzer(store)
	cache, err := buildCache(store)
	if err != nil {
		return err
	}
	annotationCache = cache

	overlayService = services.NewOverlay(services.OverlayConfig{
		Enabled:           overlayEnabled(store),
		Concurrency:       store.GetInt("overlay.concurrency"),
		FetchTimeout:      time.Duration(store.GetInt("overlay.fetch_timeout_seconds")) * time.Second,
		RequestsPerSecond: store.GetFloat("overlay.requests_per_second"),
		Burst:             store.GetInt("overlay.burst"),
	}, analyzer, registry, cache)

	return nil
}

// overlayEnabled resolves the enablement switch: environment first,
// config second, off by default.
func overlayEnabled(store *file.ConfigStore) bool {
	if raw, ok := os.LookupEnv(envToggle); ok {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			return enabled
		}
		logger.Warn("ignoring invalid %s value %q", envToggle, raw)
	}
	return store.GetBool("overlay.enabled")
}

// buildAnalyzer selects the analyzer adapter from config. A configured
// command takes precedence over a URL; with neither the overlay runs in
// passthrough mode.
func buildAnalyzer(store *file.ConfigStore) driven.Analyzer {
	if command := store.GetString("analyzer.command"); command != "" {
		return subprocess.New(subprocess.Config{
			Command: command,
			Args:    store.GetStringSlice("analyzer.args"),
		})
	}
	if url := store.GetString("analyzer.url"); url != "" {
		return httpapi.New(httpapi.Config{BaseURL: url})
	}
	logger.Debug("no analyzer configured, overlay runs in passthrough mode")
	return nil
}

// buildCache selects the cache adapter from config.
func buildCache(store *file.ConfigStore) (driven.AnnotationCache, error) {
	if !store.GetBool("cache.persistent") {
		return memory.New(), nil
	}
	cache, err := sqlite.New(store.GetString("cache.dir"))
	if err != nil {
		return nil, fmt.Errorf("opening annotation cache: %w", err)
	}
	return cache, nil
}

func closeServices() {
	if annotationCache != nil {
		if err := annotationCache.Close(); err != nil {
			logger.Debug("closing cache: %v", err)
		}
	}
}
