package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Winter-Soldier02/FreQ/core"
)

type docxExtractor struct {
	keep   func(core.Document, []byte)
	logger *slog.Logger
}

func (d *docxExtractor) extract(_ context.Context, doc core.Document, data []byte) (string, error) {
	cleaned, changed, err := CleanDOCXHeaders(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
	}
	if changed {
		d.logger.Debug("cleared watermark header paragraphs", "document", doc.Name())
	}
	d.keep(doc, cleaned)

	reader, err := zip.NewReader(bytes.NewReader(cleaned), int64(len(cleaned)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
		}
		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("%w: %w", core.ErrExtractionFailure, ErrNoDocumentBody)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins body paragraphs with newlines.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing document.xml: %w", core.ErrExtractionFailure, err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
