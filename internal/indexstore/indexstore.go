// Package indexstore is the file-hash ledger the analyze pipeline consults
// to decide which files actually need re-parsing. It's adapted from the
// teacher's SQLite-backed Store: the teacher combined file tracking, chunk
// storage, and embedding storage in one table set; this module splits that
// apart so chunks live with the retrieval indices that query them
// (internal/vectorindex, internal/lexical) and this package keeps only the
// per-file hash/language/timestamp record and the free-form meta table the
// teacher used for schema bookkeeping.
package indexstore

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/deepakdgupta1/knowcode/internal/errs"
)

const ddl = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS files (
    path       TEXT PRIMARY KEY,
    hash       TEXT NOT NULL,
    language   TEXT NOT NULL DEFAULT '',
    indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// FileRecord is the ledger entry for one indexed file.
type FileRecord struct {
	Path      string
	Hash      string
	Language  string
	IndexedAt time.Time
}

// Store is the file-hash ledger backing incremental re-analysis.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "open index store db", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.IOError, "init index store schema", err)
	}
	return &Store{db: db}, nil
}

// Hash returns the stored hash for path, or "" if it has never been indexed.
func (s *Store) Hash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow("SELECT hash FROM files WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errs.Wrap(errs.IOError, "read file hash", err)
	}
	return hash, nil
}

// Upsert records path's current hash and language.
func (s *Store) Upsert(path, hash, language string) error {
	_, err := s.db.Exec(
		`INSERT INTO files (path, hash, language, indexed_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, language = excluded.language, indexed_at = CURRENT_TIMESTAMP`,
		path, hash, language,
	)
	if err != nil {
		return errs.Wrap(errs.IOError, "upsert file record", err)
	}
	return nil
}

// Remove deletes a file's ledger entry, used when the scanner no longer
// finds a previously indexed path (deleted or newly ignored).
func (s *Store) Remove(path string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return errs.Wrap(errs.IOError, "remove file record", err)
	}
	return nil
}

// All returns every tracked file, used to detect files removed from disk
// since the last analyze.
func (s *Store) All() ([]FileRecord, error) {
	rows, err := s.db.Query("SELECT path, hash, language, indexed_at FROM files")
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "list file records", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.Path, &r.Hash, &r.Language, &r.IndexedAt); err != nil {
			return nil, errs.Wrap(errs.IOError, "scan file record", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetMeta returns a metadata value, or "" if unset.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errs.Wrap(errs.IOError, "read meta", err)
	}
	return value, nil
}

// SetMeta sets a metadata key-value pair.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return errs.Wrap(errs.IOError, "write meta", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
