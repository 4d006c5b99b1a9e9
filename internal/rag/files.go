// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package rag

import (
	"context"
	"log/slog"

	"github.com/lore-dev/lore/internal/store"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Files answers questions about a user's uploaded documents.
type Files struct {
	store store.ChunkStore
}

// NewFiles creates a file catalog over the chunk store.
func NewFiles(s store.ChunkStore) *Files {
	return &Files{store: s}
}

// List returns one entry per file the user owns, ordered by file id.
func (f *Files) List(ctx context.Context, userID string) ([]store.FileInfo, error) {
	chunks, err := f.store.GetByFilter(ctx, store.ByUser(userID), 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(chunks))
	var files []store.FileInfo
	for _, c := range chunks {
		if seen[c.Metadata.FileID] {
			continue
		}
		seen[c.Metadata.FileID] = true
		files = append(files, store.FileInfo{
			FileID:      c.Metadata.FileID,
			Filename:    c.Metadata.Filename,
			UploadTime:  c.Metadata.Timestamp,
			TotalChunks: c.Metadata.TotalChunks,
		})
	}

	return files, nil
}

// Get returns the file's info if the user owns it. The not-found error is the
// same whether the file does not exist or belongs to someone else.
func (f *Files) Get(ctx context.Context, userID, fileID string) (store.FileInfo, error) {
	chunks, err := f.store.GetByFilter(ctx, store.ByUserAndFile(userID, fileID), 1)
	if err != nil {
		return store.FileInfo{}, err
	}
	if len(chunks) == 0 {
		return store.FileInfo{}, loreerr.Errorf(loreerr.CodeRAGFileNotFound,
			"file not found or access denied")
	}

	c := chunks[0]
	return store.FileInfo{
		FileID:      c.Metadata.FileID,
		Filename:    c.Metadata.Filename,
		UploadTime:  c.Metadata.Timestamp,
		TotalChunks: c.Metadata.TotalChunks,
	}, nil
}

// Delete removes all of the file's chunks if the user owns it.
func (f *Files) Delete(ctx context.Context, userID, fileID string) (store.FileInfo, error) {
	info, err := f.Get(ctx, userID, fileID)
	if err != nil {
		return store.FileInfo{}, err
	}

	deleted, err := f.store.DeleteByFilter(ctx, store.ByUserAndFile(userID, fileID))
	if err != nil {
		return store.FileInfo{}, err
	}

	slog.Info("file deleted", "user_id", userID, "file_id", fileID, "chunks", deleted)

	return info, nil
}
