// Package cache implements SPEC_FULL.md §7's persistent compilation
// cache: a SQLite-backed store keyed by (class name, method signature,
// source hash) that lets the driver skip re-translating a method whose
// bytecode has not changed since the last compile.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/wasmforge/classwasm/internal/errs"
)

// Store manages the compiled-method cache in SQLite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the cache database's default location,
// "$HOME/.classwasmc/cache.db", creating the parent directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.KindIO, err, "resolve home directory for cache path")
	}
	dir := filepath.Join(home, ".classwasmc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.KindIO, err, "create cache directory %q", dir)
	}
	return filepath.Join(dir, "cache.db"), nil
}

// Open creates or opens the cache database at path (pass "" for
// DefaultPath) and ensures its schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "open cache database %q", path)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS compiled_methods (
		class_name TEXT NOT NULL,
		signature  TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		body BLOB NOT NULL,
		scratch_locals BLOB NOT NULL,
		PRIMARY KEY (class_name, signature)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errs.Wrap(errs.KindIO, err, "initialise cache schema")
	}
	return nil
}

// HashSource returns the cache key's source-hash component for one
// method's raw bytecode.
func HashSource(code []byte) string {
	sum := sha256.Sum256(code)
	return hex.EncodeToString(sum[:])
}

// Entry is one cached method translation: its already-assembled
// instruction body plus the scratch locals the translator allocated
// beyond the method's own declared locals (internal/translator.Result).
type Entry struct {
	Body          []byte
	ScratchLocals []byte
}

// Lookup returns the cached entry for (className, signature) if its
// recorded source hash still matches sourceHash — a stale entry (source
// changed since it was cached) is reported as a miss, not returned.
func (s *Store) Lookup(ctx context.Context, className, signature, sourceHash string) (Entry, bool, error) {
	var e Entry
	var gotHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT source_hash, body, scratch_locals FROM compiled_methods WHERE class_name = ? AND signature = ?`,
		className, signature,
	).Scan(&gotHash, &e.Body, &e.ScratchLocals)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errs.Wrap(errs.KindIO, err, "query cache for %s", signature)
	}
	if gotHash != sourceHash {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Store persists (or replaces) the cached entry for (className,
// signature, sourceHash).
func (s *Store) Store(ctx context.Context, className, signature, sourceHash string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compiled_methods (class_name, signature, source_hash, body, scratch_locals)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(class_name, signature) DO UPDATE SET
		 	source_hash = excluded.source_hash,
		 	body = excluded.body,
		 	scratch_locals = excluded.scratch_locals`,
		className, signature, sourceHash, e.Body, e.ScratchLocals,
	)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "store cache entry for %s", signature)
	}
	return nil
}
