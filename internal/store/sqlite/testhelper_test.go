// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package sqlite_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lore-dev/lore/internal/store"
	"github.com/stretchr/testify/require"
)

// testDir creates a temp directory for a test and registers cleanup.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "lore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

// fileChunks builds a contiguous chunk batch for one file, with orthogonal-ish
// 3-dimensional vectors supplied by the caller.
func fileChunks(userID, fileID, filename string, vectors [][]float32) []store.Chunk {
	chunks := make([]store.Chunk, len(vectors))
	for i, v := range vectors {
		chunks[i] = store.Chunk{
			ID:     fmt.Sprintf("%s_chunk_%d", fileID, i),
			Vector: v,
			Text:   fmt.Sprintf("%s text %d", filename, i),
			Metadata: store.ChunkMetadata{
				UserID:      userID,
				FileID:      fileID,
				Filename:    filename,
				ChunkIndex:  i,
				TotalChunks: len(vectors),
				Timestamp:   "2026-01-02T15:04:05Z",
			},
		}
	}
	return chunks
}
