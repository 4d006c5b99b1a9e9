// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lore-dev/lore/internal/provider"
	"github.com/lore-dev/lore/internal/store"
)

// NoContextAnswer is returned verbatim when retrieval finds nothing relevant.
// No completion call is made in that case.
const NoContextAnswer = "I couldn't find any relevant information to answer your question."

const answerPromptFormat = `Based on the following context, please answer the question.
If the answer cannot be found in the context, say so.

Context:
%s

Question: %s

Answer:`

// Question is a user's query, optionally scoped to a single file.
type Question struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	FileID string `json:"file_id,omitempty"`
}

// Source points at a chunk that grounded an answer.
type Source struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// Answer is a grounded response with the chunks that produced it.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// Answerer retrieves a user's relevant chunks and asks a completion model to
// answer from them.
type Answerer struct {
	store     store.ChunkStore
	embedder  provider.Embedder
	completer provider.Completer
	topK      int
}

// NewAnswerer creates an answerer retrieving topK chunks per question.
func NewAnswerer(s store.ChunkStore, e provider.Embedder, c provider.Completer, topK int) *Answerer {
	return &Answerer{
		store:     s,
		embedder:  e,
		completer: c,
		topK:      topK,
	}
}

// Answer embeds the question, searches the user's chunks (scoped to one file
// when q.FileID is set), and completes a grounded prompt over the hits.
func (a *Answerer) Answer(ctx context.Context, q Question) (Answer, error) {
	queryVec, err := a.embedder.EmbedOne(ctx, q.Text)
	if err != nil {
		return Answer{}, err
	}

	f := store.ByUser(q.UserID)
	if q.FileID != "" {
		f = store.ByUserAndFile(q.UserID, q.FileID)
	}

	results, err := a.store.Search(ctx, queryVec, f, a.topK)
	if err != nil {
		return Answer{}, err
	}

	if len(results) == 0 {
		slog.Info("no relevant chunks for question", "user_id", q.UserID)
		return Answer{Text: NoContextAnswer}, nil
	}

	contexts := make([]string, len(results))
	sources := make([]Source, len(results))
	for i, r := range results {
		contexts[i] = r.Text
		sources[i] = Source{
			Filename:   r.Metadata.Filename,
			ChunkIndex: r.Metadata.ChunkIndex,
		}
	}

	prompt := fmt.Sprintf(answerPromptFormat, strings.Join(contexts, "\n\n"), q.Text)

	text, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	slog.Info("answered question", "user_id", q.UserID, "sources", len(sources))

	return Answer{Text: text, Sources: sources}, nil
}
