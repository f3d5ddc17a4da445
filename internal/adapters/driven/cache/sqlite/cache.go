// Package sqlite provides a persistent annotation cache so repeated
// documentation builds skip analyzer invocations for unchanged code
// blocks. WAL mode keeps concurrent readers and the single writer per
// key from blocking each other.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hoverdoc/hoverdoc/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.AnnotationCache = (*Cache)(nil)

// Cache is a SQLite-backed annotation cache.
type Cache struct {
	db   *sql.DB
	path string
}

// New creates a SQLite cache at the specified data directory.
// If dataDir is empty, defaults to ~/.hoverdoc/data/cache.db.
func New(dataDir string) (*Cache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hoverdoc", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Cache{
		db:   db,
		path: dbPath,
	}

	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Get returns the cached annotations for key.
func (c *Cache) Get(ctx context.Context, key string) ([]domain.RawAnnotation, bool, error) {
	var payload string
	row := c.db.QueryRowContext(ctx, "SELECT payload FROM annotation_cache WHERE key = ?", key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	var annotations []domain.RawAnnotation
	if err := json.Unmarshal([]byte(payload), &annotations); err != nil {
		return nil, false, fmt.Errorf("unmarshalling cache entry: %w", err)
	}
	return annotations, true, nil
}

// Put stores annotations under key. Last write wins on conflict; the
// payloads are identical for identical keys anyway, since analysis is
// idempotent.
func (c *Cache) Put(ctx context.Context, key string, annotations []domain.RawAnnotation) error {
	if annotations == nil {
		annotations = []domain.RawAnnotation{}
	}
	payload, err := json.Marshal(annotations)
	if err != nil {
		return fmt.Errorf("marshalling annotations: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO annotation_cache (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload
	`, key, string(payload))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// migrate runs all pending migrations.
func (c *Cache) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
