// Package mcp provides an MCP (Model Context Protocol) server adapter
// for hoverdoc. It lets AI assistants annotate code snippets with
// inferred types through the same overlay pipeline the CLI uses.
package mcp

import "errors"

// ErrMissingOverlayService is returned when the overlay service is not provided.
var ErrMissingOverlayService = errors.New("mcp: overlay service is required")
