// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lore-dev/lore/internal/provider"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

const (
	defaultCompletionModel = "claude-sonnet-4-5"
	defaultMaxTokens       = 4096
)

// Anthropic has no embeddings endpoint, so the gateway only offers completion.
var _ provider.Completer = (*Gateway)(nil)

// Gateway implements the completion capability using the Anthropic Messages API.
type Gateway struct {
	client          anthropicsdk.Client
	completionModel string
}

// New creates an Anthropic gateway. Returns an error if the API key is missing.
func New(cfg provider.Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, loreerr.New(loreerr.CodeProviderRequestInvalid,
			"anthropic: missing api_key in config", loreerr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	g := &Gateway{
		client:          anthropicsdk.NewClient(opts...),
		completionModel: cfg.CompletionModel,
	}
	if g.completionModel == "" {
		g.completionModel = defaultCompletionModel
	}

	return g, nil
}

// Complete sends a single-shot prompt and returns the concatenated text blocks
// of the response.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(g.completionModel),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", provider.WrapUpstream(ctx, err, "anthropic", "completion")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", loreerr.New(loreerr.CodeProviderResponseInvalid,
			"anthropic: completion returned no text", loreerr.FieldProvider("anthropic"))
	}

	return sb.String(), nil
}
