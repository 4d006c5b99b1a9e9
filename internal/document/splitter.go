// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package document

import (
	"strings"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// defaultSeparators order documents from coarse to fine: paragraph breaks,
// line breaks, word boundaries, then single characters as a last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most Size bytes, carrying Overlap
// bytes of trailing context into the next chunk. Splits prefer natural
// boundaries and recurse to finer separators only when a piece is too large.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. Overlap must be smaller than size.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"splitter: chunk size must be greater than 0, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, loreerr.Errorf(loreerr.CodeConfigValidateInvalidValue,
			"splitter: overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}

	return &Splitter{
		size:       size,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split returns the chunks of text. Whitespace-only chunks are dropped, so
// the result never contains empty strings.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	// Pick the first separator present in the text; "" always matches and
	// degrades to per-character splitting.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var chunks []string
	var pending []string
	for _, piece := range splits {
		if len(piece) < s.size {
			pending = append(pending, piece)
			continue
		}

		if len(pending) > 0 {
			chunks = append(chunks, s.mergeSplits(pending, separator)...)
			pending = nil
		}

		if len(remaining) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.splitText(piece, remaining)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.mergeSplits(pending, separator)...)
	}

	return chunks
}

// mergeSplits packs consecutive splits into chunks up to the size limit,
// then slides the window back so the next chunk starts with overlap bytes
// of the previous one.
func (s *Splitter) mergeSplits(splits []string, separator string) []string {
	sepLen := len(separator)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range splits {
		pieceLen := len(piece)

		joinLen := 0
		if len(window) > 0 {
			joinLen = sepLen
		}
		if total+pieceLen+joinLen > s.size && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}

			// Shrink the window down to the overlap budget.
			for len(window) > 0 && (total > s.overlap || total+pieceLen+sepLen > s.size) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		window = append(window, piece)
		total += pieceLen
		if len(window) > 1 {
			total += sepLen
		}
	}

	if chunk := strings.TrimSpace(strings.Join(window, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitOn splits text by separator, dropping empty pieces. An empty separator
// splits into individual characters.
func splitOn(text, separator string) []string {
	var raw []string
	if separator == "" {
		raw = strings.Split(text, "")
	} else {
		raw = strings.Split(text, separator)
	}

	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
