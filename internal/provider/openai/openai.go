// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/lore-dev/lore/internal/provider"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

const (
	defaultEmbeddingModel  = "text-embedding-3-small"
	defaultCompletionModel = "gpt-4.1-mini"
	defaultDimensions      = 1536
)

// Compile-time interface checks.
var (
	_ provider.Embedder  = (*Gateway)(nil)
	_ provider.Completer = (*Gateway)(nil)
)

// Gateway implements both the embedding and completion capabilities using
// the OpenAI API.
type Gateway struct {
	client          openaisdk.Client
	embeddingModel  string
	completionModel string
	dimensions      int
}

// New creates an OpenAI gateway. Returns an error if the API key is missing.
func New(cfg provider.Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, loreerr.New(loreerr.CodeProviderRequestInvalid,
			"openai: missing api_key in config", loreerr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	g := &Gateway{
		client:          openaisdk.NewClient(opts...),
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

// EmbedBatch embeds texts in one API call. Results are placed by the
// response's index field, so vector i corresponds to input i even if the
// provider returns data out of order.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := g.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input:      openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openaisdk.EmbeddingModel(g.embeddingModel),
		Dimensions: param.NewOpt(int64(g.dimensions)),
	})
	if err != nil {
		return nil, provider.WrapUpstream(ctx, err, "openai", "embedding batch")
	}

	if len(resp.Data) != len(texts) {
		return nil, loreerr.Errorf(loreerr.CodeProviderResponseInvalid,
			"openai: embedding count %d does not match input count %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, loreerr.Errorf(loreerr.CodeProviderResponseInvalid,
				"openai: embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
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
	resp, err := g.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(g.completionModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", provider.WrapUpstream(ctx, err, "openai", "completion")
	}

	if len(resp.Choices) == 0 {
		return "", loreerr.New(loreerr.CodeProviderResponseInvalid,
			"openai: completion returned no choices", loreerr.FieldProvider("openai"))
	}

	return resp.Choices[0].Message.Content, nil
}
