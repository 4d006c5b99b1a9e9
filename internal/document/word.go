// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package document

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// WordLoader extracts plain text from Word documents. Only the OOXML (.docx)
// container is parsed; legacy binary .doc files fail with a load error.
type WordLoader struct{}

var _ Loader = (*WordLoader)(nil)

func (l *WordLoader) Load(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeIngestDocumentLoadFailure,
			"opening word document %s (legacy binary .doc is not readable)", path)
	}
	defer archive.Close()

	var docXML *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", loreerr.Errorf(loreerr.CodeIngestDocumentLoadFailure,
			"word document %s has no word/document.xml entry", path)
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeIngestDocumentLoadFailure,
			"opening document body of %s", path)
	}
	defer rc.Close()

	text, err := extractDocumentText(rc)
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeIngestDocumentLoadFailure,
			"parsing document body of %s", path)
	}

	return text, nil
}

// extractDocumentText walks the OOXML body, collecting the character data of
// <w:t> runs and ending each <w:p> paragraph with a newline.
func extractDocumentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
