// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lore-dev/lore/internal/config"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Listen)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "lore.db", cfg.Storage.Path)
	assert.Equal(t, "uploads", cfg.Storage.UploadsDir)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "openai", cfg.Answering.Provider)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 1536, cfg.Retrieval.Dimensions)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lore.yaml")
	content := `
server:
  listen: "0.0.0.0:9000"
storage:
  path: "/var/lib/lore/lore.db"
providers:
  openai:
    api_key: "sk-test"
    completion_model: "gpt-4.1"
chunking:
  size: 800
  overlap: 100
retrieval:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, "/var/lib/lore/lore.db", cfg.Storage.Path)
	assert.Equal(t, "sk-test", cfg.Providers["openai"].APIKey)
	assert.Equal(t, "gpt-4.1", cfg.Providers["openai"].CompletionModel)
	assert.Equal(t, 800, cfg.Chunking.Size)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1536, cfg.Retrieval.Dimensions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/no/such/path/lore.yaml")
	require.Error(t, err)
	assert.True(t, loreerr.HasCode(err, loreerr.CodeConfigLoadReadFailure))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LORE_CHUNKING_SIZE", "500")
	t.Setenv("LORE_RETRIEVAL_TOP_K", "7")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Listen:         "not-an-address",
			RequestTimeout: 0,
			MaxUploadBytes: 0,
		},
		Storage: config.StorageConfig{Path: "", UploadsDir: ""},
		Chunking: config.ChunkingConfig{
			Size:    0,
			Overlap: -1,
		},
		Retrieval: config.RetrievalConfig{TopK: 0, Dimensions: 0},
	}

	errs := cfg.Validate()
	// One error per broken field, not just the first.
	assert.GreaterOrEqual(t, len(errs), 8)
	for _, err := range errs {
		assert.True(t, loreerr.HasCode(err, loreerr.CodeConfigValidateInvalidValue), "unexpected code: %v", err)
	}
}

func TestValidate_OverlapMustBeSmallerThanSize(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking = config.ChunkingConfig{Size: 200, Overlap: 200}

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "chunking.overlap")
}

func TestValidate_SelectionMustReferenceConfiguredProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {APIKey: "sk-test"},
	}
	cfg.Answering = config.SelectionConfig{Provider: "anthropic"}

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "answering.provider")
	assert.Contains(t, errs[0].Error(), "anthropic")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Listen = "127.0.0.1:70000"

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "port")
}

func TestValidate_ValidConfigHasNoErrors(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

// validConfig returns a configuration that passes Validate, for mutation in
// targeted failure tests.
func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Listen:         "127.0.0.1:8000",
			RequestTimeout: 60 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Storage:   config.StorageConfig{Path: "lore.db", UploadsDir: "uploads"},
		Embedding: config.SelectionConfig{Provider: "openai"},
		Answering: config.SelectionConfig{Provider: "openai"},
		Chunking:  config.ChunkingConfig{Size: 1000, Overlap: 200},
		Retrieval: config.RetrievalConfig{TopK: 3, Dimensions: 1536},
	}
}
