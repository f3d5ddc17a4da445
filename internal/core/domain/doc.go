// Package domain contains the core types of the annotation overlay
// engine: code fragments, tokens, annotations, and the decorated token
// stream handed to renderers. It has no dependencies on adapters.
package domain
