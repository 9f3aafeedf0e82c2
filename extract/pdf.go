package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Winter-Soldier02/FreQ/core"
)

type pdfExtractor struct {
	opener     PageOpener
	stripper   AnnotationStripper
	recognizer Recognizer
	keep       func(core.Document, []byte)
	logger     *slog.Logger
}

func (p *pdfExtractor) extract(ctx context.Context, doc core.Document, data []byte) (string, error) {
	cleaned, src, err := p.clean(data)
	if err != nil {
		return "", err
	}
	p.keep(doc, cleaned)

	// Materialized lazily: only scanned pages need a file for the rasterizer.
	var scan string
	defer func() {
		if scan != "" {
			os.Remove(scan)
		}
	}()

	var pages []string
	for n := 1; n <= src.NumPages(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := src.PageText(n)
		if err != nil {
			p.logger.Debug("text layer unreadable", "document", doc.Name(), "page", n, "error", err)
			text = ""
		}
		if strings.TrimSpace(text) == "" {
			if scan == "" {
				if scan, err = writeTemp(cleaned); err != nil {
					return "", err
				}
			}
			text, err = p.recognizer.Recognize(ctx, scan, n)
			if err != nil {
				p.logger.Warn("recognition failed, page treated as empty", "document", doc.Name(), "page", n, "error", err)
				text = ""
			}
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

// clean removes annotations and returns the bytes to extract from together
// with a page source over them.
func (p *pdfExtractor) clean(data []byte) ([]byte, PageSource, error) {
	src, err := p.opener(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
	}
	if src == nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrExtractionFailure, errNilSource)
	}
	if annotationCount(src) == 0 {
		return data, src, nil
	}

	stripped, err := p.stripper.StripAnnotations(data)
	if err != nil {
		p.logger.Warn("annotation removal failed, extracting original", "error", err)
		return data, src, nil
	}
	strippedSrc, err := p.opener(stripped)
	if err != nil || strippedSrc == nil {
		p.logger.Warn("cleaned pdf unreadable, extracting original", "error", err)
		return data, src, nil
	}
	return stripped, strippedSrc, nil
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "freq-*.pdf")
	if err != nil {
		return "", fmt.Errorf("staging pdf for ocr: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("staging pdf for ocr: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("staging pdf for ocr: %w", err)
	}
	return f.Name(), nil
}
