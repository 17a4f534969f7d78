// Package vectorindex persists dense chunk embeddings in SQLite using the
// sqlite-vec virtual table the teacher already depends on, generalized from
// the teacher's fixed 768-dimension int-keyed schema to a string chunk id
// keyed schema whose dimension is fixed at creation time from configuration.
//
// On Open, the rowid<->chunk-id mapping is rebuilt from the on-disk
// chunk_ids table rather than left empty: a process restart must not lose
// the ability to map a vec0 search hit (which only returns a rowid) back to
// the chunk id callers actually want.
package vectorindex

import (
	"database/sql"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/deepakdgupta1/knowcode/internal/errs"
	"github.com/deepakdgupta1/knowcode/internal/model"
)

func init() {
	sqlite_vec.Auto()
}

// Hit is one nearest-neighbor search result.
type Hit struct {
	ChunkID  string
	Distance float64
}

// Index is a dense vector index over chunk embeddings, backed by SQLite.
type Index struct {
	db        *sql.DB
	dimension int
	idMap     map[int64]string // rowid -> chunk id, rebuilt on Open
}

// Open creates or opens a vector index at dbPath for vectors of the given
// dimension. Opening a database built with a different dimension is a
// SCHEMA_MISMATCH: the vec0 virtual table's column width is fixed at
// creation, so a dimension change requires a fresh index, not a migration.
func Open(dbPath string, dimension int) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "open vector index db", err)
	}

	var existingDDL string
	err = db.QueryRow("SELECT sql FROM sqlite_master WHERE name = 'vec_chunks'").Scan(&existingDDL)
	if err == nil && !strings.Contains(existingDDL, fmt.Sprintf("float[%d]", dimension)) {
		db.Close()
		return nil, errs.New(errs.SchemaMismatch, fmt.Sprintf("vector index was built with a dimension other than %d", dimension))
	}

	idx := &Index{db: db, dimension: dimension, idMap: make(map[int64]string)}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.loadIDMap(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) init() error {
	ddl := fmt.Sprintf(`
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS chunk_ids (
    rowid    INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id TEXT NOT NULL UNIQUE
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    embedding float[%d]
);

CREATE TABLE IF NOT EXISTS vector_manifest (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`, idx.dimension)
	_, err := idx.db.Exec(ddl)
	if err != nil {
		return errs.Wrap(errs.IOError, "init vector index schema", err)
	}
	return nil
}

func (idx *Index) loadIDMap() error {
	rows, err := idx.db.Query("SELECT rowid, chunk_id FROM chunk_ids")
	if err != nil {
		return errs.Wrap(errs.IOError, "load chunk id map", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rowid int64
		var chunkID string
		if err := rows.Scan(&rowid, &chunkID); err != nil {
			return errs.Wrap(errs.IOError, "scan chunk id map row", err)
		}
		idx.idMap[rowid] = chunkID
	}
	return rows.Err()
}

// Add inserts or replaces the embeddings for the given records. A record
// whose chunk already exists has its vector replaced in place, keeping the
// same rowid so the id map doesn't grow unboundedly on re-index.
func (idx *Index) Add(records []model.VectorRecord) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IOError, "begin vector add tx", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if len(r.Vector) != idx.dimension {
			return errs.New(errs.EmbeddingFailure, fmt.Sprintf("vector for %s has dimension %d, want %d", r.ChunkID, len(r.Vector), idx.dimension))
		}
		rowid, err := idx.rowidFor(tx, r.ChunkID)
		if err != nil {
			return err
		}
		blob, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return errs.Wrap(errs.EmbeddingFailure, "serialize vector", err)
		}
		if _, err := tx.Exec("DELETE FROM vec_chunks WHERE rowid = ?", rowid); err != nil {
			return errs.Wrap(errs.IOError, "replace vector row", err)
		}
		if _, err := tx.Exec("INSERT INTO vec_chunks (rowid, embedding) VALUES (?, ?)", rowid, blob); err != nil {
			return errs.Wrap(errs.IOError, "insert vector row", err)
		}
		idx.idMap[rowid] = r.ChunkID
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.IOError, "commit vector add tx", err)
	}
	return nil
}

func (idx *Index) rowidFor(tx *sql.Tx, chunkID string) (int64, error) {
	var rowid int64
	err := tx.QueryRow("SELECT rowid FROM chunk_ids WHERE chunk_id = ?", chunkID).Scan(&rowid)
	if err == nil {
		return rowid, nil
	}
	if err != sql.ErrNoRows {
		return 0, errs.Wrap(errs.IOError, "lookup chunk rowid", err)
	}
	res, err := tx.Exec("INSERT INTO chunk_ids (chunk_id) VALUES (?)", chunkID)
	if err != nil {
		return 0, errs.Wrap(errs.IOError, "insert chunk id", err)
	}
	return res.LastInsertId()
}

// Remove deletes the embeddings for the given chunk ids, used by the
// watcher's remove-after-swap step once a chunk no longer exists on disk.
func (idx *Index) Remove(chunkIDs []string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IOError, "begin vector remove tx", err)
	}
	defer tx.Rollback()

	for _, id := range chunkIDs {
		var rowid int64
		err := tx.QueryRow("SELECT rowid FROM chunk_ids WHERE chunk_id = ?", id).Scan(&rowid)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return errs.Wrap(errs.IOError, "lookup chunk rowid for remove", err)
		}
		if _, err := tx.Exec("DELETE FROM vec_chunks WHERE rowid = ?", rowid); err != nil {
			return errs.Wrap(errs.IOError, "delete vector row", err)
		}
		if _, err := tx.Exec("DELETE FROM chunk_ids WHERE rowid = ?", rowid); err != nil {
			return errs.Wrap(errs.IOError, "delete chunk id row", err)
		}
		delete(idx.idMap, rowid)
	}
	return tx.Commit()
}

// Search returns the k nearest chunks to query by vector distance.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dimension {
		return nil, errs.New(errs.EmbeddingFailure, fmt.Sprintf("query vector has dimension %d, want %d", len(query), idx.dimension))
	}
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, errs.Wrap(errs.EmbeddingFailure, "serialize query vector", err)
	}
	rows, err := idx.db.Query(`
		SELECT rowid, distance FROM vec_chunks
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, blob, k)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "vector search query", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var rowid int64
		var dist float64
		if err := rows.Scan(&rowid, &dist); err != nil {
			return nil, errs.Wrap(errs.IOError, "scan vector search row", err)
		}
		chunkID, ok := idx.idMap[rowid]
		if !ok {
			continue // stale row raced with a concurrent remove; skip rather than fail the whole search
		}
		hits = append(hits, Hit{ChunkID: chunkID, Distance: dist})
	}
	return hits, rows.Err()
}

// Count returns the number of embedded chunks currently in the index.
func (idx *Index) Count() int { return len(idx.idMap) }

// SetManifest persists a Manifest describing the build that produced this
// index, so a later Open can tell whether it matches the active config.
func (idx *Index) SetManifest(m model.Manifest) error {
	_, err := idx.db.Exec(
		`INSERT INTO vector_manifest (key, value) VALUES ('schema_version', ?), ('embedding_model', ?), ('provider', ?), ('dimension', ?), ('chunk_count', ?), ('source_hash', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(m.SchemaVersion), m.EmbeddingModel, m.Provider, fmt.Sprint(m.Dimension), fmt.Sprint(m.ChunkCount), m.SourceHash,
	)
	if err != nil {
		return errs.Wrap(errs.IOError, "persist vector manifest", err)
	}
	return nil
}

// Manifest loads the persisted Manifest, or ok=false if none was ever set
// (a freshly created index).
func (idx *Index) Manifest() (model.Manifest, bool, error) {
	rows, err := idx.db.Query("SELECT key, value FROM vector_manifest")
	if err != nil {
		return model.Manifest{}, false, errs.Wrap(errs.IOError, "load vector manifest", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return model.Manifest{}, false, errs.Wrap(errs.IOError, "scan vector manifest row", err)
		}
		values[k] = v
	}
	if len(values) == 0 {
		return model.Manifest{}, false, nil
	}
	var m model.Manifest
	fmt.Sscanf(values["schema_version"], "%d", &m.SchemaVersion)
	fmt.Sscanf(values["dimension"], "%d", &m.Dimension)
	fmt.Sscanf(values["chunk_count"], "%d", &m.ChunkCount)
	m.EmbeddingModel = values["embedding_model"]
	m.Provider = values["provider"]
	m.SourceHash = values["source_hash"]
	return m, true, nil
}

// Close closes the underlying database.
func (idx *Index) Close() error { return idx.db.Close() }
