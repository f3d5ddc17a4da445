package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for hoverdoc resources.
	uriScheme = "hoverdoc://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing the language tags tokenizers claim.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "languages",
		Name:        "languages",
		Description: "Language tags with a dedicated tokenizer",
		MIMEType:    "application/json",
	}, s.handleLanguagesResource)

	// Static resource reporting overlay availability.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Whether type annotation is currently enabled",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleLanguagesResource returns the claimed language tags.
func (s *Server) handleLanguagesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	languages := s.ports.Languages
	if languages == nil {
		languages = []string{}
	}

	data, err := json.MarshalIndent(languages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling languages: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleStatusResource reports whether the overlay will attempt analysis.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status := struct {
		Enabled bool `json:"enabled"`
	}{
		Enabled: s.ports.Overlay.Enabled(),
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
