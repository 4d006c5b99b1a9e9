// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package document

import (
	"path/filepath"
	"strings"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// Loader extracts plain text from a document file.
type Loader interface {
	Load(path string) (string, error)
}

// ForPath returns the loader for a file based on its extension.
// Supported extensions are pdf, txt, doc and docx.
func ForPath(path string) (Loader, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "pdf":
		return &PDFLoader{}, nil
	case "txt":
		return &TextLoader{}, nil
	case "doc", "docx":
		return &WordLoader{}, nil
	default:
		return nil, loreerr.Errorf(loreerr.CodeIngestFileTypeUnsupported,
			"unsupported file type: %q", ext)
	}
}
