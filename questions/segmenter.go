package questions

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// PunktSegmenter detects sentence boundaries with the English Punkt model,
// which knows common abbreviations such as "e.g." and "Dr.".
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

var _ Segmenter = (*PunktSegmenter)(nil)

// NewPunktSegmenter loads the bundled English training data.
func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

// Segment returns the sentences of text in order, with surrounding
// whitespace trimmed and empty sentences dropped.
func (p *PunktSegmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
