// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package store

import "context"

// ChunkStore is the persistent vector index of document chunks.
//
// Search ranks by descending cosine similarity among the chunks matching the
// filter only; ties break in an implementation-defined stable order. An empty
// result is a legal outcome, never an error.
type ChunkStore interface {
	// Insert durably persists a batch of chunks, all-or-nothing. An empty
	// batch is a no-op. Vector lengths must match the collection's
	// dimensionality.
	Insert(ctx context.Context, chunks []Chunk) error

	// Search returns at most topK chunks matching the filter, ranked by
	// descending similarity to the query vector.
	Search(ctx context.Context, query []float32, f Filter, topK int) ([]SearchResult, error)

	// GetByFilter returns chunk records (metadata and text, no vectors)
	// matching the filter, unranked. limit <= 0 means no limit.
	GetByFilter(ctx context.Context, f Filter, limit int) ([]Chunk, error)

	// DeleteByFilter removes all matching chunks and reports how many were
	// deleted. Deleting a filter that matches nothing succeeds with zero.
	DeleteByFilter(ctx context.Context, f Filter) (int, error)

	Close() error
}
