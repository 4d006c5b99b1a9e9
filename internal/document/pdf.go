// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package document

import (
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// PDFLoader extracts plain text from PDF files page by page.
type PDFLoader struct{}

var _ Loader = (*PDFLoader)(nil)

func (l *PDFLoader) Load(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeIngestDocumentLoadFailure,
			"opening pdf %s", path)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep going: a single malformed page should not sink the document.
			slog.Warn("failed to extract pdf page text", "path", path, "page", i, "error", err)
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
