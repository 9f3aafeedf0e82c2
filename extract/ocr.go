package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Winter-Soldier02/FreQ/core"
)

// Recognizer reads the text of one page of a PDF file by rendering it as an
// image. Pages are numbered from 1.
type Recognizer interface {
	Recognize(ctx context.Context, pdfPath string, page int) (string, error)
}

// tesseractRecognizer renders with pdftoppm and reads with tesseract.
type tesseractRecognizer struct {
	runner     CommandRunner
	rasterizer string
	recognizer string
	dpi        int
	language   string
}

var _ Recognizer = (*tesseractRecognizer)(nil)

func newTesseractRecognizer(cfg *Config, runner CommandRunner) *tesseractRecognizer {
	return &tesseractRecognizer{
		runner:     runner,
		rasterizer: cfg.RasterizerPath,
		recognizer: cfg.RecognizerPath,
		dpi:        cfg.DPI,
		language:   cfg.Language,
	}
}

func (r *tesseractRecognizer) Recognize(ctx context.Context, pdfPath string, page int) (string, error) {
	n := strconv.Itoa(page)
	image, err := r.runner.Run(ctx, nil, r.rasterizer,
		"-r", strconv.Itoa(r.dpi), "-f", n, "-l", n, "-png", pdfPath)
	if err != nil {
		return "", fmt.Errorf("%w: rasterizing page %d: %v", core.ErrRecognitionFailure, page, err)
	}
	if len(image) == 0 {
		return "", fmt.Errorf("%w: rasterizing page %d: empty image", core.ErrRecognitionFailure, page)
	}

	text, err := r.runner.Run(ctx, image, r.recognizer, "stdin", "stdout", "-l", r.language)
	if err != nil {
		return "", fmt.Errorf("%w: reading page %d: %v", core.ErrRecognitionFailure, page, err)
	}
	return strings.TrimSpace(string(text)), nil
}
