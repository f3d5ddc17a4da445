package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hoverdoc/hoverdoc/internal/logger"
)

var watchWrite bool

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-annotate markdown documents as they change",
	Long: `Watches the given files or directories and re-runs annotation
whenever a markdown document is created or modified.

With --write, the annotated token streams are written next to each
document as <name>.tokens.json; otherwise only a summary is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchWrite, "write", "w", false, "write <name>.tokens.json next to each document")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range args {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}

	cmd.Printf("Watching %d path(s) for markdown changes...\n", len(args))

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !isMarkdown(event.Name) {
				continue
			}
			if err := reprocess(cmd, event.Name); err != nil {
				logger.Warn("reprocessing %s: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// reprocess annotates one changed document and reports the result.
func reprocess(cmd *cobra.Command, path string) error {
	result, err := annotateDocument(cmd, path)
	if err != nil {
		return err
	}

	annotations := 0
	for _, block := range result.Blocks {
		annotations += block.AnnotationCount
	}
	cmd.Printf("%s: %d blocks, %d annotations\n", path, len(result.Blocks), annotations)

	if !watchWrite {
		return nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	out := tokensPath(path)
	if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// tokensPath derives the output path: doc.md becomes doc.tokens.json.
func tokensPath(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ".tokens.json"
}
