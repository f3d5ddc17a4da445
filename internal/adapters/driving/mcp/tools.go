package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

// AnnotateInput is the input schema for the annotate_code tool.
type AnnotateInput struct {
	Code     string `json:"code" jsonschema:"the source code snippet to annotate"`
	Language string `json:"language" jsonschema:"language tag of the snippet, e.g. go or rust"`
}

// AnnotateOutput is the output schema for the annotate_code tool.
type AnnotateOutput struct {
	Language        string        `json:"language"`
	Tokens          []TokenOutput `json:"tokens"`
	AnnotationCount int           `json:"annotation_count"`
}

// TokenOutput represents a single decorated token.
type TokenOutput struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Type       string `json:"type,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotate_code",
		Description: "Tokenize a code snippet and attach inferred type annotations",
	}, s.handleAnnotate)
}

// handleAnnotate handles the annotate_code tool invocation.
func (s *Server) handleAnnotate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotateInput,
) (*mcp.CallToolResult, AnnotateOutput, error) {
	fragment := domain.CodeFragment{
		ID:       uuid.NewString(),
		Text:     input.Code,
		Language: input.Language,
		Origin:   domain.Origin{Document: "mcp"},
	}

	stream := s.ports.Overlay.ProcessFragment(ctx, fragment)

	output := AnnotateOutput{
		Language:        stream.Language,
		Tokens:          make([]TokenOutput, len(stream.Tokens)),
		AnnotationCount: stream.AnnotationCount(),
	}

	for i := range stream.Tokens {
		tok := &stream.Tokens[i]
		out := TokenOutput{
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Kind:  string(tok.Kind),
			Text:  tok.Text,
		}
		if tok.Annotation != nil {
			out.Type = tok.Annotation.Type
			out.Confidence = string(tok.Annotation.Confidence)
		}
		output.Tokens[i] = out
	}

	return nil, output, nil
}
