package mcp

import (
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Overlay processes code fragments into annotated token streams.
	Overlay driving.OverlayService

	// Languages lists the language tags the tokenizer registry claims.
	// Optional; the languages resource returns an empty list without it.
	Languages []string
}

// Validate checks that all required ports are present.
func (p *Ports) Validate() error {
	if p.Overlay == nil {
		return ErrMissingOverlayService
	}
	return nil
}
