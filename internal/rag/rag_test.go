// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package rag_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lore-dev/lore/internal/document"
	"github.com/lore-dev/lore/internal/rag"
	"github.com/lore-dev/lore/internal/store"
	"github.com/lore-dev/lore/internal/store/sqlite"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

const testDims = 3

// fakeEmbedder returns fixed vectors for known texts and a default vector
// otherwise, making search results deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	batches int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) Dimensions() int { return testDims }

type fakeCompleter struct {
	reply      string
	lastPrompt string
	calls      int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.reply, nil
}

func newTestStore(t *testing.T) *sqlite.ChunkStore {
	t.Helper()
	dir, err := os.MkdirTemp("", "lore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := sqlite.NewChunkStore(filepath.Join(dir, "chunks.db"), testDims)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeTextFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newSplitter(t *testing.T, size, overlap int) *document.Splitter {
	t.Helper()
	sp, err := document.NewSplitter(size, overlap)
	require.NoError(t, err)
	return sp
}

func TestIngest_TextDocument(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 30, 0))
	ctx := context.Background()

	path := writeTextFile(t, "notes.txt",
		"first paragraph of the notes.\n\nsecond paragraph of the notes.\n\nthird paragraph of the notes.")

	receipt, err := ing.Ingest(ctx, "alice", path, "notes.txt")
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", receipt.Filename)
	assert.Equal(t, 3, receipt.ChunkCount)
	_, err = uuid.Parse(receipt.FileID)
	assert.NoError(t, err, "file ID should be a UUID")

	// All chunks embedded in a single batch call.
	assert.Equal(t, 1, emb.batches)

	chunks, err := cs.GetByFilter(ctx, store.ByUserAndFile("alice", receipt.FileID), 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("%s_chunk_%d", receipt.FileID, i), c.ID)
		assert.Equal(t, i, c.Metadata.ChunkIndex)
		assert.Equal(t, 3, c.Metadata.TotalChunks)
		assert.Equal(t, "alice", c.Metadata.UserID)
		assert.Equal(t, "notes.txt", c.Metadata.Filename)
		// Every chunk of a file carries the same upload timestamp.
		assert.Equal(t, chunks[0].Metadata.Timestamp, c.Metadata.Timestamp)
	}
}

func TestIngest_UnsupportedFileType(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 1000, 200))

	path := writeTextFile(t, "image.png", "not really an image")

	_, err := ing.Ingest(context.Background(), "alice", path, "image.png")
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeIngestFileTypeUnsupported))
}

func TestIngest_EmptyDocument(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 1000, 200))
	ctx := context.Background()

	path := writeTextFile(t, "blank.txt", "   \n\n\t  ")

	_, err := ing.Ingest(ctx, "alice", path, "blank.txt")
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeIngestDocumentEmpty))

	// Nothing was stored.
	chunks, err := cs.GetByFilter(ctx, store.ByUser("alice"), 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestIngest_MissingFile(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 1000, 200))

	_, err := ing.Ingest(context.Background(), "alice", "/no/such/file.txt", "file.txt")
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeIngestDocumentLoadFailure))
}

func TestAnswer_Grounded(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"the capital of France is Paris.": {0, 1, 0},
		"what is the capital of France?":  {0, 1, 0},
	}}
	comp := &fakeCompleter{reply: "Paris."}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 1000, 200))
	ans := rag.NewAnswerer(cs, emb, comp, 3)
	ctx := context.Background()

	path := writeTextFile(t, "facts.txt", "the capital of France is Paris.")
	_, err := ing.Ingest(ctx, "alice", path, "facts.txt")
	require.NoError(t, err)

	got, err := ans.Answer(ctx, rag.Question{UserID: "alice", Text: "what is the capital of France?"})
	require.NoError(t, err)

	assert.Equal(t, "Paris.", got.Text)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, rag.Source{Filename: "facts.txt", ChunkIndex: 0}, got.Sources[0])

	// The prompt carries both the retrieved context and the question.
	assert.Contains(t, comp.lastPrompt, "the capital of France is Paris.")
	assert.Contains(t, comp.lastPrompt, "what is the capital of France?")
	assert.Contains(t, comp.lastPrompt, "Based on the following context")
}

func TestAnswer_NoResultsReturnsSentinel(t *testing.T) {
	cs := newTestStore(t)
	comp := &fakeCompleter{reply: "should never be used"}
	ans := rag.NewAnswerer(cs, &fakeEmbedder{}, comp, 3)

	got, err := ans.Answer(context.Background(), rag.Question{UserID: "alice", Text: "anything?"})
	require.NoError(t, err)

	assert.Equal(t, rag.NoContextAnswer, got.Text)
	assert.Empty(t, got.Sources)
	// No completion call was made.
	assert.Zero(t, comp.calls)
}

func TestAnswer_ScopedToFile(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{}
	comp := &fakeCompleter{reply: "from the scoped file"}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 1000, 200))
	ans := rag.NewAnswerer(cs, emb, comp, 5)
	ctx := context.Background()

	_, err := ing.Ingest(ctx, "alice", writeTextFile(t, "a.txt", "contents of file a"), "a.txt")
	require.NoError(t, err)
	receiptB, err := ing.Ingest(ctx, "alice", writeTextFile(t, "b.txt", "contents of file b"), "b.txt")
	require.NoError(t, err)

	got, err := ans.Answer(ctx, rag.Question{UserID: "alice", Text: "what is in it?", FileID: receiptB.FileID})
	require.NoError(t, err)

	require.Len(t, got.Sources, 1)
	assert.Equal(t, "b.txt", got.Sources[0].Filename)
	assert.NotContains(t, comp.lastPrompt, "contents of file a")
}

func TestAnswer_TenantIsolation(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 1000, 200))
	ans := rag.NewAnswerer(cs, emb, &fakeCompleter{reply: "x"}, 5)
	ctx := context.Background()

	_, err := ing.Ingest(ctx, "alice", writeTextFile(t, "secret.txt", "alice's private notes"), "secret.txt")
	require.NoError(t, err)

	got, err := ans.Answer(ctx, rag.Question{UserID: "bob", Text: "what are alice's notes?"})
	require.NoError(t, err)
	assert.Equal(t, rag.NoContextAnswer, got.Text)
}

func TestFiles_ListOneEntryPerFile(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 20, 0))
	files := rag.NewFiles(cs)
	ctx := context.Background()

	ra, err := ing.Ingest(ctx, "alice", writeTextFile(t, "a.txt", "alpha beta gamma delta epsilon zeta"), "a.txt")
	require.NoError(t, err)
	rb, err := ing.Ingest(ctx, "alice", writeTextFile(t, "b.txt", "short"), "b.txt")
	require.NoError(t, err)
	_, err = ing.Ingest(ctx, "bob", writeTextFile(t, "c.txt", "someone else's file"), "c.txt")
	require.NoError(t, err)

	got, err := files.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]store.FileInfo{got[0].FileID: got[0], got[1].FileID: got[1]}
	infoA, ok := byID[ra.FileID]
	require.True(t, ok)
	assert.Equal(t, "a.txt", infoA.Filename)
	assert.Equal(t, ra.ChunkCount, infoA.TotalChunks)
	assert.NotEmpty(t, infoA.UploadTime)

	infoB, ok := byID[rb.FileID]
	require.True(t, ok)
	assert.Equal(t, "b.txt", infoB.Filename)
	assert.Equal(t, 1, infoB.TotalChunks)
}

func TestFiles_ListEmptyUser(t *testing.T) {
	files := rag.NewFiles(newTestStore(t))

	got, err := files.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFiles_GetNotFoundAndWrongOwnerLookAlike(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 1000, 200))
	files := rag.NewFiles(cs)
	ctx := context.Background()

	receipt, err := ing.Ingest(ctx, "alice", writeTextFile(t, "a.txt", "alice's file"), "a.txt")
	require.NoError(t, err)

	_, missingErr := files.Get(ctx, "alice", "no-such-file")
	require.Error(t, missingErr)
	assert.True(t, loreerr.HasCode(missingErr, loreerr.CodeRAGFileNotFound))

	_, deniedErr := files.Get(ctx, "bob", receipt.FileID)
	require.Error(t, deniedErr)
	assert.True(t, loreerr.HasCode(deniedErr, loreerr.CodeRAGFileNotFound))

	// The two failures are indistinguishable to the caller.
	assert.Equal(t, missingErr.Error(), deniedErr.Error())
	assert.True(t, loreerr.IsNotFound(deniedErr))
}

func TestFiles_Delete(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 20, 0))
	files := rag.NewFiles(cs)
	ctx := context.Background()

	receipt, err := ing.Ingest(ctx, "alice", writeTextFile(t, "a.txt", "alpha beta gamma delta epsilon zeta"), "a.txt")
	require.NoError(t, err)
	require.Greater(t, receipt.ChunkCount, 1)

	info, err := files.Delete(ctx, "alice", receipt.FileID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Filename)

	chunks, err := cs.GetByFilter(ctx, store.ByUser("alice"), 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Deleting again reports not found.
	_, err = files.Delete(ctx, "alice", receipt.FileID)
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeRAGFileNotFound))
}

func TestFiles_DeleteRequiresOwner(t *testing.T) {
	cs := newTestStore(t)
	ing := rag.NewIngestor(cs, &fakeEmbedder{}, newSplitter(t, 1000, 200))
	files := rag.NewFiles(cs)
	ctx := context.Background()

	receipt, err := ing.Ingest(ctx, "alice", writeTextFile(t, "a.txt", "alice's file"), "a.txt")
	require.NoError(t, err)

	_, err = files.Delete(ctx, "bob", receipt.FileID)
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeRAGFileNotFound))

	// Alice's chunks are untouched.
	chunks, err := cs.GetByFilter(ctx, store.ByUser("alice"), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

// The splitter wiring must never hand empty chunks to the embedder.
func TestIngest_NoBlankChunks(t *testing.T) {
	cs := newTestStore(t)
	emb := &fakeEmbedder{}
	ing := rag.NewIngestor(cs, emb, newSplitter(t, 25, 5))
	ctx := context.Background()

	path := writeTextFile(t, "gaps.txt", "one\n\n\n\ntwo\n\n   \n\nthree four five six seven")
	receipt, err := ing.Ingest(ctx, "alice", path, "gaps.txt")
	require.NoError(t, err)

	chunks, err := cs.GetByFilter(ctx, store.ByUserAndFile("alice", receipt.FileID), 0)
	require.NoError(t, err)
	require.Len(t, chunks, receipt.ChunkCount)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
}
