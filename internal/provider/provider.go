// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package provider

import "context"

// Embedder converts text into fixed-dimension float vectors. Batched calls
// are order-preserving: vector i always corresponds to input i. Pipelines
// rely on that alignment to pair embeddings with chunks.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the vector width this embedder produces. The chunk
	// collection is opened with the same value.
	Dimensions() int
}

// Completer answers a single prompt with a single text response. No
// streaming, no conversation state.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the per-provider settings shared by all gateway
// implementations.
type Config struct {
	APIKey          string
	BaseURL         string // optional, useful for testing against a mock server
	EmbeddingModel  string
	CompletionModel string
	Dimensions      int
}
