package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/extract"
)

var annotateOutput string

var annotateCmd = &cobra.Command{
	Use:   "annotate [files...]",
	Short: "Annotate code blocks in markdown documents",
	Long: `Extracts fenced code blocks from the given markdown documents,
tokenizes them, and attaches type annotations from the configured
analyzer. The resulting token streams are written as JSON.

Without a configured analyzer, or when annotation is disabled, the
output contains plain tokens with no annotations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "write JSON to file instead of stdout")
	rootCmd.AddCommand(annotateCmd)
}

// documentResult is the per-document JSON output.
type documentResult struct {
	Document string        `json:"document"`
	Blocks   []blockResult `json:"blocks"`
}

// blockResult is the annotated token stream for one code block.
type blockResult struct {
	Block           int           `json:"block"`
	Language        string        `json:"language,omitempty"`
	AnnotationCount int           `json:"annotation_count"`
	Tokens          []tokenResult `json:"tokens"`
}

// tokenResult is a single decorated token.
type tokenResult struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Type       string `json:"type,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

var (
	summaryStyle = lipgloss.NewStyle().Bold(true)
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func runAnnotate(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	results := make([]documentResult, 0, len(args))

	for _, path := range args {
		result, err := annotateDocument(cmd, path)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	if annotateOutput != "" {
		if err := os.WriteFile(annotateOutput, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	} else {
		cmd.Println(string(data))
	}

	printSummary(results)
	return nil
}

// annotateDocument extracts and processes all code blocks of one file.
func annotateDocument(cmd *cobra.Command, path string) (documentResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return documentResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	fragments, err := extract.New().Fragments(path, source)
	if err != nil {
		return documentResult{}, fmt.Errorf("extracting code blocks from %s: %w", path, err)
	}

	streams := overlayService.ProcessFragments(cmd.Context(), fragments)

	result := documentResult{
		Document: path,
		Blocks:   make([]blockResult, len(streams)),
	}
	for i := range streams {
		result.Blocks[i] = toBlockResult(fragments[i], streams[i])
	}
	return result, nil
}

func toBlockResult(fragment domain.CodeFragment, stream domain.AnnotatedStream) blockResult {
	block := blockResult{
		Block:           fragment.Origin.Block,
		Language:        stream.Language,
		AnnotationCount: stream.AnnotationCount(),
		Tokens:          make([]tokenResult, len(stream.Tokens)),
	}
	for i := range stream.Tokens {
		tok := &stream.Tokens[i]
		out := tokenResult{
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Kind:  string(tok.Kind),
			Text:  tok.Text,
		}
		if tok.Annotation != nil {
			out.Type = tok.Annotation.Type
			out.Confidence = string(tok.Annotation.Confidence)
		}
		block.Tokens[i] = out
	}
	return block
}

// printSummary writes a styled per-document summary to stderr when it is
// a terminal, so piping the JSON output stays clean.
func printSummary(results []documentResult) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	for _, result := range results {
		annotations := 0
		for _, block := range result.Blocks {
			annotations += block.AnnotationCount
		}
		fmt.Fprintf(os.Stderr, "%s  %s\n",
			summaryStyle.Render(result.Document),
			countStyle.Render(fmt.Sprintf("%d blocks, %d annotations", len(result.Blocks), annotations)),
		)
	}
}
