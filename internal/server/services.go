// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package server

import (
	"github.com/lore-dev/lore/internal/rag"
)

// Services bundles the RAG services the HTTP routes depend on.
type Services struct {
	Ingestor *rag.Ingestor
	Answerer *rag.Answerer
	Files    *rag.Files
}
