// Package services implements the overlay engine's core logic: offset
// mapping between displayed and analyzed text, annotation-to-token
// reconciliation, decoration merging, and the fragment coordinator.
// Services depend only on the domain types and the driven ports.
package services
