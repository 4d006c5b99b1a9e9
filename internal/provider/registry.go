// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package provider

import (
	"sync"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Registry resolves configured embedding and completion gateways by name.
// Providers are registered once at wiring time; lookups are goroutine-safe.
type Registry struct {
	mu         sync.RWMutex
	embedders  map[string]Embedder
	completers map[string]Completer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		embedders:  make(map[string]Embedder),
		completers: make(map[string]Completer),
	}
}

// RegisterEmbedder adds an embedding gateway under the given provider name.
func (r *Registry) RegisterEmbedder(name string, e Embedder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedders[name] = e
}

// RegisterCompleter adds a completion gateway under the given provider name.
func (r *Registry) RegisterCompleter(name string, c Completer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completers[name] = c
}

// Embedder returns the embedding gateway registered under name.
func (r *Registry) Embedder(name string) (Embedder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.embedders[name]
	if !ok {
		return nil, loreerr.New(loreerr.CodeProviderNotFound,
			"no embedding provider registered under this name",
			loreerr.FieldProvider(name),
		)
	}
	return e, nil
}

// Completer returns the completion gateway registered under name.
func (r *Registry) Completer(name string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.completers[name]
	if !ok {
		return nil, loreerr.New(loreerr.CodeProviderNotFound,
			"no completion provider registered under this name",
			loreerr.FieldProvider(name),
		)
	}
	return c, nil
}
