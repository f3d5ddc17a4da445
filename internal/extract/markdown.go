// Package extract locates fenced code blocks in markdown documents and
// hands each block off as a CodeFragment. It is the boundary between
// the documentation source and the overlay engine: the engine never
// sees markdown, only fragments.
package extract

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// Extractor parses markdown and collects fenced code blocks.
type Extractor struct {
	md goldmark.Markdown
}

// New creates a markdown extractor.
func New() *Extractor {
	return &Extractor{md: goldmark.New()}
}

// Fragments returns one CodeFragment per fenced code block in source,
// in document order. The document path is recorded for provenance; the
// block index counts fenced blocks only. Indented code blocks are
// skipped: they carry no language tag and are rarely real examples.
func (e *Extractor) Fragments(document string, source []byte) ([]domain.CodeFragment, error) {
	root := e.md.Parser().Parse(text.NewReader(source))

	var fragments []domain.CodeFragment
	block := 0

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		fragments = append(fragments, domain.CodeFragment{
			ID:       uuid.New().String(),
			Text:     blockText(fenced, source),
			Language: language(fenced, source),
			Origin:   domain.Origin{Document: document, Block: block},
		})
		block++
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return fragments, nil
}

// blockText reassembles the fence body from its line segments.
func blockText(fenced *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fenced.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	// The closing fence excludes the final newline from the segments on
	// some inputs; normalise so fragments never carry a trailing newline.
	return strings.TrimRight(buf.String(), "\n")
}

// language extracts the language tag from the fence info string,
// ignoring any attributes after the first word (e.g. ```go,editable).
func language(fenced *ast.FencedCodeBlock, source []byte) string {
	lang := string(fenced.Language(source))
	if idx := strings.IndexAny(lang, ", \t"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}
