// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Config is the top-level Lore configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Embedding SelectionConfig           `mapstructure:"embedding"`
	Answering SelectionConfig           `mapstructure:"answering"`
	Chunking  ChunkingConfig            `mapstructure:"chunking"`
	Retrieval RetrievalConfig           `mapstructure:"retrieval"`
}

// ServerConfig controls how the HTTP server listens for connections.
type ServerConfig struct {
	Listen         string        `mapstructure:"listen"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// StorageConfig selects where chunks and uploads live on disk.
type StorageConfig struct {
	Path       string `mapstructure:"path"`
	UploadsDir string `mapstructure:"uploads_dir"`
}

// ProviderConfig holds credentials and endpoint for an LLM provider.
// APIKey may be a literal, an env reference already expanded by Viper,
// or a keyring:// URI resolved at startup.
type ProviderConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Endpoint        string `mapstructure:"endpoint"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	CompletionModel string `mapstructure:"completion_model"`
}

// SelectionConfig picks which configured provider serves a capability.
type SelectionConfig struct {
	Provider string `mapstructure:"provider"`
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// RetrievalConfig controls the similarity search.
type RetrievalConfig struct {
	TopK       int `mapstructure:"top_k"`
	Dimensions int `mapstructure:"dimensions"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix LORE_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_upload_bytes", int64(32<<20))
	v.SetDefault("storage.path", "lore.db")
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("answering.provider", "openai")
	v.SetDefault("chunking.size", 1000)
	v.SetDefault("chunking.overlap", 200)
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("retrieval.dimensions", 1536)

	// Environment
	v.SetEnvPrefix("LORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, loreerr.Errorf(loreerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, loreerr.Errorf(loreerr.CodeConfigLoadReadFailure, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateSelections()...)
	errs = append(errs, c.validateChunking()...)
	errs = append(errs, c.validateRetrieval()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w",
				c.Server.Listen, err,
			))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be a number, got %q", portStr))
			} else if port < 1 || port > 65535 {
				errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be between 1 and 65535, got %d", port))
			}
		}
	}

	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: server.request_timeout must be greater than 0, got %s", c.Server.RequestTimeout))
	}

	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: server.max_upload_bytes must be greater than 0, got %d", c.Server.MaxUploadBytes))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if c.Storage.Path == "" {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}
	if c.Storage.UploadsDir == "" {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue, "config: storage.uploads_dir must not be empty"))
	}

	return errs
}

func (c *Config) validateSelections() []error {
	var errs []error

	for _, sel := range []struct {
		field string
		value string
	}{
		{"embedding.provider", c.Embedding.Provider},
		{"answering.provider", c.Answering.Provider},
	} {
		if sel.value == "" {
			errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
				"config: %s must not be empty", sel.field))
			continue
		}
		// Only cross-reference providers when the providers section exists.
		// A nil map means defaults only, which is valid until startup wiring.
		if c.Providers != nil {
			if _, ok := c.Providers[sel.value]; !ok {
				errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
					"config: %s references provider %q which is not configured", sel.field, sel.value))
			}
		}
	}

	return errs
}

func (c *Config) validateChunking() []error {
	var errs []error

	if c.Chunking.Size <= 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: chunking.size must be greater than 0, got %d", c.Chunking.Size))
	}

	if c.Chunking.Overlap < 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: chunking.overlap must not be negative, got %d", c.Chunking.Overlap))
	} else if c.Chunking.Size > 0 && c.Chunking.Overlap >= c.Chunking.Size {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: chunking.overlap (%d) must be smaller than chunking.size (%d)",
			c.Chunking.Overlap, c.Chunking.Size))
	}

	return errs
}

func (c *Config) validateRetrieval() []error {
	var errs []error

	if c.Retrieval.TopK <= 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: retrieval.top_k must be greater than 0, got %d", c.Retrieval.TopK))
	}

	if c.Retrieval.Dimensions <= 0 {
		errs = append(errs, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"config: retrieval.dimensions must be greater than 0, got %d", c.Retrieval.Dimensions))
	}

	return errs
}
