// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lore-dev/lore/internal/store"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ store.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements store.ChunkStore backed by SQLite with the sqlite-vec
// extension. Similarity search is an exact scan: the metadata filter
// restricts the candidate rows first and cosine distance ranks only those,
// so a farther chunk can never displace a closer one that matches the
// filter. Ties break by chunk id (stable, not contractual).
type ChunkStore struct {
	db         *sql.DB
	dimensions int
}

// NewChunkStore opens (or creates) a SQLite database at dbPath and
// initialises the chunks table. dimensions fixes the collection's embedding
// width; every inserted vector must match it.
func NewChunkStore(dbPath string, dimensions int) (*ChunkStore, error) {
	if dimensions <= 0 {
		return nil, loreerr.Errorf(loreerr.CodeStoreInvalidInput, "vector dimensions must be positive, got %d", dimensions)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreUnavailable, "opening sqlite db %s", dbPath)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreUnavailable, "pinging sqlite db %s", dbPath)
	}

	if err := migrateChunks(db); err != nil {
		_ = db.Close()
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreUnavailable, "migrating chunk tables")
	}

	return &ChunkStore{db: db, dimensions: dimensions}, nil
}

func migrateChunks(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	file_id      TEXT NOT NULL,
	filename     TEXT NOT NULL,
	chunk_index  INTEGER NOT NULL,
	total_chunks INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	content      TEXT NOT NULL,
	extra        TEXT NOT NULL DEFAULT '{}',
	embedding    BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_user ON chunks(user_id);
CREATE INDEX IF NOT EXISTS idx_chunks_user_file ON chunks(user_id, file_id);
`
	_, err := db.Exec(ddl)
	return err
}

// Dimensions returns the collection's fixed embedding width.
func (c *ChunkStore) Dimensions() int {
	return c.dimensions
}

// Insert persists a batch of chunks in one transaction. An empty batch is a
// no-op. A vector whose length disagrees with the collection's
// dimensionality fails the whole batch before anything is written.
func (c *ChunkStore) Insert(ctx context.Context, chunks []store.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, ch := range chunks {
		if len(ch.Vector) != c.dimensions {
			return loreerr.New(loreerr.CodeStoreDimensionMismatch,
				"vector length disagrees with collection dimensionality",
				loreerr.Field("chunk_id", ch.ID),
				loreerr.Field("got", len(ch.Vector)),
				loreerr.Field("want", c.dimensions),
			)
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "beginning insert transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO chunks
(id, user_id, file_id, filename, chunk_index, total_chunks, created_at, content, extra, embedding)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "preparing chunk insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, ch := range chunks {
		blob, err := sqlite_vec.SerializeFloat32(ch.Vector)
		if err != nil {
			return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "serializing embedding for chunk %s", ch.ID)
		}

		extraJSON := []byte("{}")
		if len(ch.Metadata.Extra) > 0 {
			extraJSON, err = json.Marshal(ch.Metadata.Extra)
			if err != nil {
				return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "marshalling extra metadata for chunk %s", ch.ID)
			}
		}

		if _, err := stmt.ExecContext(ctx,
			ch.ID,
			ch.Metadata.UserID,
			ch.Metadata.FileID,
			ch.Metadata.Filename,
			ch.Metadata.ChunkIndex,
			ch.Metadata.TotalChunks,
			ch.Metadata.Timestamp,
			ch.Text,
			string(extraJSON),
			blob,
		); err != nil {
			return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "inserting chunk %s", ch.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return loreerr.Wrapf(err, loreerr.CodeStoreInsertFailure, "committing chunk batch")
	}
	return nil
}

// Search ranks the filter-eligible chunks by cosine distance to the query
// vector and returns the topK closest. Score is 1 - cosine distance, i.e.
// cosine similarity in [-1, 1].
func (c *ChunkStore) Search(ctx context.Context, query []float32, f store.Filter, topK int) ([]store.SearchResult, error) {
	if topK <= 0 {
		return nil, loreerr.Errorf(loreerr.CodeStoreInvalidInput, "top_k must be positive, got %d", topK)
	}
	if len(query) != c.dimensions {
		return nil, loreerr.New(loreerr.CodeStoreDimensionMismatch,
			"query vector length disagrees with collection dimensionality",
			loreerr.Field("got", len(query)),
			loreerr.Field("want", c.dimensions),
		)
	}

	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "serializing query vector")
	}

	q := `SELECT content, user_id, file_id, filename, chunk_index, total_chunks, created_at, extra,
vec_distance_cosine(embedding, ?) AS distance
FROM chunks` + where + ` ORDER BY distance, id LIMIT ?`

	qargs := make([]any, 0, len(args)+2)
	qargs = append(qargs, blob)
	qargs = append(qargs, args...)
	qargs = append(qargs, topK)

	rows, err := c.db.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "searching chunks")
	}
	defer func() { _ = rows.Close() }()

	var results []store.SearchResult
	for rows.Next() {
		var (
			r        store.SearchResult
			extraStr string
			distance float64
		)
		if err := rows.Scan(
			&r.Text,
			&r.Metadata.UserID,
			&r.Metadata.FileID,
			&r.Metadata.Filename,
			&r.Metadata.ChunkIndex,
			&r.Metadata.TotalChunks,
			&r.Metadata.Timestamp,
			&extraStr,
			&distance,
		); err != nil {
			return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "scanning search result")
		}
		if extraStr != "" && extraStr != "{}" {
			if err := json.Unmarshal([]byte(extraStr), &r.Metadata.Extra); err != nil {
				return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "unmarshalling extra metadata")
			}
		}
		r.Score = 1 - distance
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "iterating search results")
	}

	return results, nil
}

// whereClause renders the filter's conjuncts into SQL. Field names come from
// the validated predicate set, never from caller strings.
func whereClause(f store.Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}

	preds := f.Predicates()
	if len(preds) == 0 {
		return "", nil, nil
	}

	var (
		conds []string
		args  []any
	)
	for _, p := range preds {
		switch p.Field {
		case store.FieldUserID:
			conds = append(conds, "user_id = ?")
		case store.FieldFileID:
			conds = append(conds, "file_id = ?")
		}
		args = append(args, p.Value)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// GetByFilter returns matching chunk records without vectors, ordered by
// file then chunk index. limit <= 0 returns everything that matches.
func (c *ChunkStore) GetByFilter(ctx context.Context, f store.Filter, limit int) ([]store.Chunk, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}

	q := `SELECT id, user_id, file_id, filename, chunk_index, total_chunks, created_at, content, extra
FROM chunks` + where + ` ORDER BY file_id, chunk_index`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "querying chunks by filter")
	}
	defer func() { _ = rows.Close() }()

	var chunks []store.Chunk
	for rows.Next() {
		var (
			ch       store.Chunk
			extraStr string
		)
		if err := rows.Scan(
			&ch.ID,
			&ch.Metadata.UserID,
			&ch.Metadata.FileID,
			&ch.Metadata.Filename,
			&ch.Metadata.ChunkIndex,
			&ch.Metadata.TotalChunks,
			&ch.Metadata.Timestamp,
			&ch.Text,
			&extraStr,
		); err != nil {
			return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "scanning chunk row")
		}
		if extraStr != "" && extraStr != "{}" {
			if err := json.Unmarshal([]byte(extraStr), &ch.Metadata.Extra); err != nil {
				return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "unmarshalling extra metadata for chunk %s", ch.ID)
			}
		}
		chunks = append(chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeStoreQueryFailure, "iterating chunk rows")
	}

	return chunks, nil
}

// DeleteByFilter removes all matching chunks. A filter matching nothing
// succeeds and reports zero.
func (c *ChunkStore) DeleteByFilter(ctx context.Context, f store.Filter) (int, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx, `DELETE FROM chunks`+where, args...)
	if err != nil {
		return 0, loreerr.Wrapf(err, loreerr.CodeStoreDeleteFailure, "deleting chunks by filter")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, loreerr.Wrapf(err, loreerr.CodeStoreDeleteFailure, "counting deleted chunks")
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (c *ChunkStore) Close() error {
	return c.db.Close()
}
