// Package driving defines the inbound ports of the overlay engine,
// implemented by core services and consumed by the CLI and MCP adapters.
package driving
