// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lore-dev/lore/internal/document"
	"github.com/lore-dev/lore/internal/provider"
	"github.com/lore-dev/lore/internal/store"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Receipt reports the outcome of ingesting one document.
type Receipt struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunks"`
}

// Ingestor turns uploaded documents into embedded chunks owned by a user.
type Ingestor struct {
	store    store.ChunkStore
	embedder provider.Embedder
	splitter *document.Splitter
	now      func() time.Time
}

// NewIngestor creates an ingestor over the given store and embedder.
func NewIngestor(s store.ChunkStore, e provider.Embedder, sp *document.Splitter) *Ingestor {
	return &Ingestor{
		store:    s,
		embedder: e,
		splitter: sp,
		now:      time.Now,
	}
}

// Ingest loads the document at path, splits it, embeds every chunk in one
// batch, and stores the chunks under a fresh file ID owned by userID.
// The whole batch lands in one insert, so a failed ingest leaves nothing
// behind.
func (in *Ingestor) Ingest(ctx context.Context, userID, path, filename string) (Receipt, error) {
	loader, err := document.ForPath(filename)
	if err != nil {
		return Receipt{}, err
	}

	text, err := loader.Load(path)
	if err != nil {
		return Receipt{}, err
	}

	pieces := in.splitter.Split(text)
	if len(pieces) == 0 {
		return Receipt{}, loreerr.Errorf(loreerr.CodeIngestDocumentEmpty,
			"document %s yielded no text", filename)
	}

	vectors, err := in.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return Receipt{}, err
	}

	fileID := uuid.NewString()
	// One timestamp for the whole file so its chunks sort together.
	uploadedAt := in.now().UTC().Format(time.RFC3339)

	chunks := make([]store.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = store.Chunk{
			ID:     fmt.Sprintf("%s_chunk_%d", fileID, i),
			Vector: vectors[i],
			Text:   piece,
			Metadata: store.ChunkMetadata{
				UserID:      userID,
				FileID:      fileID,
				Filename:    filename,
				ChunkIndex:  i,
				TotalChunks: len(pieces),
				Timestamp:   uploadedAt,
			},
		}
	}

	if err := in.store.Insert(ctx, chunks); err != nil {
		return Receipt{}, err
	}

	slog.Info("document ingested",
		"user_id", userID,
		"file_id", fileID,
		"filename", filename,
		"chunks", len(chunks),
	)

	return Receipt{
		FileID:     fileID,
		Filename:   filename,
		ChunkCount: len(chunks),
	}, nil
}
