// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package document

import (
	"os"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// TextLoader reads plain text files verbatim.
type TextLoader struct{}

var _ Loader = (*TextLoader)(nil)

func (l *TextLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeIngestDocumentLoadFailure,
			"reading text file %s", path)
	}
	return string(data), nil
}
