// Package subprocess provides an analyzer adapter that invokes an
// external analysis binary per request. The child process is the only
// expensive resource in the pipeline; it is killed and reaped on every
// exit path, including timeout.
package subprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// DefaultWaitDelay bounds how long Wait blocks on a killed child's
// pipes before forcing cleanup.
const DefaultWaitDelay = 5 * time.Second

// Config holds configuration for the subprocess analyzer.
type Config struct {
	// Command is the analyzer binary. Empty means not configured.
	Command string

	// Args are fixed arguments passed on every invocation.
	Args []string

	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
}

// Analyzer runs the external analysis binary. The request is written to
// the child's stdin as JSON {"text":..., "language":...}; the child
// replies on stdout with JSON {"annotations":[...]} or {"error":...}.
type Analyzer struct {
	command   string
	args      []string
	waitDelay time.Duration
}

// response is the analyzer's stdout format.
type response struct {
	Annotations []domain.RawAnnotation `json:"annotations"`
	Error       string                 `json:"error,omitempty"`
}

// New creates a subprocess analyzer.
func New(cfg Config) *Analyzer {
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = DefaultWaitDelay
	}
	return &Analyzer{
		command:   cfg.Command,
		args:      cfg.Args,
		waitDelay: cfg.WaitDelay,
	}
}

// Analyze invokes the binary once and parses its output. Identical
// requests are safe to repeat: each invocation is a fresh process with
// no shared state.
func (a *Analyzer) Analyze(ctx context.Context, req driven.AnalysisRequest) ([]domain.RawAnnotation, error) {
	if a.command == "" {
		return nil, fmt.Errorf("%w: no analyzer command configured", domain.ErrAnalyzerUnavailable)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.command, a.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = a.waitDelay

	runErr := cmd.Run()

	if ctx.Err() != nil {
		// CommandContext has already killed the child. Only an expired
		// deadline counts as a timeout; a cancelled parent context means
		// the run is being torn down, not that the analyzer is slow.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisTimeout, a.command)
		}
		return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
	}

	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) {
			// Binary missing or not runnable.
			return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, runErr)
		}
		return nil, fmt.Errorf("%w: %v: %s", domain.ErrAnalysisFailed, runErr, firstLine(stderr.String()))
	}

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, resp.Error)
	}

	return resp.Annotations, nil
}

// Ping validates the analyzer binary is resolvable without running it.
func (a *Analyzer) Ping(_ context.Context) error {
	if a.command == "" {
		return fmt.Errorf("%w: no analyzer command configured", domain.ErrAnalyzerUnavailable)
	}
	if _, err := exec.LookPath(a.command); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
	}
	return nil
}

// Close releases resources. Each invocation reaps its own child, so
// there is nothing persistent to tear down.
func (a *Analyzer) Close() error {
	return nil
}

// firstLine trims analyzer stderr to a single diagnostic line.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
