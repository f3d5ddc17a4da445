// Package driven defines the outbound ports of the overlay engine:
// the external analyzer, tokenizers, and the annotation cache.
// Adapters implement these interfaces; core services depend only on them.
package driven
