// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/lore-dev/lore/internal/provider"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

const (
	defaultEmbeddingModel  = "text-embedding-004"
	defaultCompletionModel = "gemini-2.5-flash"
	defaultDimensions      = 768
)

// Compile-time interface checks.
var (
	_ provider.Embedder  = (*Gateway)(nil)
	_ provider.Completer = (*Gateway)(nil)
)

// Gateway implements both the embedding and completion capabilities using
// the Google Gemini API.
type Gateway struct {
	client          *genai.Client
	embeddingModel  string
	completionModel string
	dimensions      int
}

// New creates a Google gateway. Returns an error if the API key is missing.
func New(cfg provider.Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, loreerr.New(loreerr.CodeProviderRequestInvalid,
			"google: missing api_key in config", loreerr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeProviderUpstreamFailure, "google: creating client")
	}

	g := &Gateway{
		client:          client,
		embeddingModel:  cfg.EmbeddingModel,
		completionModel: cfg.CompletionModel,
		dimensions:      cfg.Dimensions,
	}
	if g.embeddingModel == "" {
		g.embeddingModel = defaultEmbeddingModel
	}
	if g.completionModel == "" {
		g.completionModel = defaultCompletionModel
	}
	if g.dimensions <= 0 {
		g.dimensions = defaultDimensions
	}

	return g, nil
}

func (g *Gateway) Dimensions() int { return g.dimensions }

// EmbedBatch embeds texts in one API call. The Gemini API returns one
// embedding per content in request order.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: t}},
		}
	}

	dims := int32(g.dimensions)
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, provider.WrapUpstream(ctx, err, "google", "embedding batch")
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, loreerr.Errorf(loreerr.CodeProviderResponseInvalid,
			"google: embedding count %d does not match input count %d", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, loreerr.Errorf(loreerr.CodeProviderResponseInvalid,
				"google: empty embedding at index %d", i)
		}
		vectors[i] = e.Values
	}

	return vectors, nil
}

// EmbedOne embeds a single text.
func (g *Gateway) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Complete sends a single-shot prompt and returns the model's text.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.completionModel, contents, nil)
	if err != nil {
		return "", provider.WrapUpstream(ctx, err, "google", "completion")
	}

	text := resp.Text()
	if text == "" {
		return "", loreerr.New(loreerr.CodeProviderResponseInvalid,
			"google: completion returned no text", loreerr.FieldProvider("google"))
	}

	return text, nil
}
