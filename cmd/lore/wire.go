// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package main

import (
	"log/slog"

	"github.com/lore-dev/lore/internal/config"
	"github.com/lore-dev/lore/internal/document"
	"github.com/lore-dev/lore/internal/provider"
	anthropicprov "github.com/lore-dev/lore/internal/provider/anthropic"
	googleprov "github.com/lore-dev/lore/internal/provider/google"
	openaiprov "github.com/lore-dev/lore/internal/provider/openai"
	"github.com/lore-dev/lore/internal/rag"
	"github.com/lore-dev/lore/internal/secrets"
	"github.com/lore-dev/lore/internal/server"
	"github.com/lore-dev/lore/internal/store"
	"github.com/lore-dev/lore/internal/store/sqlite"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// App holds all wired subsystems and manages their lifecycle.
type App struct {
	Server *server.Server
	Store  store.ChunkStore
}

// Close releases the app's resources.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		slog.Warn("closing chunk store", "error", err)
	}
}

// WireApp creates all subsystems and wires them together.
func WireApp(cfg *config.Config) (*App, error) {
	// 1. Chunk store.
	cs, err := sqlite.NewChunkStore(cfg.Storage.Path, cfg.Retrieval.Dimensions)
	if err != nil {
		return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "opening chunk store at %s", cfg.Storage.Path)
	}

	// 2. Provider registry, with keyring:// API keys resolved.
	registry, err := buildRegistry(cfg, secrets.NewKeyringStore())
	if err != nil {
		_ = cs.Close()
		return nil, err
	}

	embedder, err := registry.Embedder(cfg.Embedding.Provider)
	if err != nil {
		_ = cs.Close()
		return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "selecting embedding provider %q", cfg.Embedding.Provider)
	}
	completer, err := registry.Completer(cfg.Answering.Provider)
	if err != nil {
		_ = cs.Close()
		return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "selecting answering provider %q", cfg.Answering.Provider)
	}

	// 3. RAG services.
	splitter, err := document.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		_ = cs.Close()
		return nil, err
	}

	// 4. HTTP server.
	srv, err := server.New(server.Config{
		ListenAddr:     cfg.Server.Listen,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		UploadsDir:     cfg.Storage.UploadsDir,
	})
	if err != nil {
		_ = cs.Close()
		return nil, err
	}

	srv.RegisterServices(&server.Services{
		Ingestor: rag.NewIngestor(cs, embedder, splitter),
		Answerer: rag.NewAnswerer(cs, embedder, completer, cfg.Retrieval.TopK),
		Files:    rag.NewFiles(cs),
	})

	return &App{Server: srv, Store: cs}, nil
}

// buildRegistry registers every configured provider under its name. Providers
// without an embedding capability register as completers only.
func buildRegistry(cfg *config.Config, secretStore secrets.Store) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for name, pc := range cfg.Providers {
		apiKey, err := secrets.ResolveKeyringURI(secretStore, pc.APIKey)
		if err != nil {
			return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "resolving api key for provider %q", name)
		}

		providerCfg := provider.Config{
			APIKey:          apiKey,
			BaseURL:         pc.Endpoint,
			EmbeddingModel:  pc.EmbeddingModel,
			CompletionModel: pc.CompletionModel,
			Dimensions:      cfg.Retrieval.Dimensions,
		}

		switch name {
		case "openai":
			g, err := openaiprov.New(providerCfg)
			if err != nil {
				return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "configuring provider %q", name)
			}
			registry.RegisterEmbedder(name, g)
			registry.RegisterCompleter(name, g)
		case "google":
			g, err := googleprov.New(providerCfg)
			if err != nil {
				return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "configuring provider %q", name)
			}
			registry.RegisterEmbedder(name, g)
			registry.RegisterCompleter(name, g)
		case "anthropic":
			g, err := anthropicprov.New(providerCfg)
			if err != nil {
				return nil, loreerr.Wrapf(err, loreerr.CodeCLISetupFailure, "configuring provider %q", name)
			}
			// Anthropic has no embeddings endpoint.
			registry.RegisterCompleter(name, g)
		default:
			return nil, loreerr.Errorf(loreerr.CodeCLISetupFailure, "unknown provider %q in config", name)
		}

		slog.Info("registered provider", "name", name)
	}

	return registry, nil
}
