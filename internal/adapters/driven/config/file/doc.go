// Package file provides the TOML-backed configuration store for
// hoverdoc. Known keys: overlay.enabled, overlay.concurrency,
// overlay.fetch_timeout_seconds, overlay.requests_per_second,
// overlay.burst, analyzer.command, analyzer.args, analyzer.url,
// cache.persistent, cache.dir.
package file
