package questions

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
)

// ErrSegmenterRequired is returned when no segmenter is provided.
var ErrSegmenterRequired = errors.New("segmenter required")

// Filter extracts candidate questions from raw text.
type Filter struct {
	segmenter Segmenter
	logger    *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFilter creates a filter using segmenter for sentence boundaries.
func NewFilter(segmenter Segmenter, opts ...Option) (*Filter, error) {
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	f := &Filter{segmenter: segmenter, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "question-filter")
	return f, nil
}

// Candidates returns every candidate question in text, in order, repeats
// included. Line breaks inside a sentence are treated as spaces.
func (f *Filter) Candidates(text string) []string {
	var out []string
	sentences := f.segmenter.Segment(text)
	for _, s := range sentences {
		if q := Normalize(s); IsCandidate(q) {
			out = append(out, q)
		}
	}
	f.logger.Debug("filtered sentences", "sentences", len(sentences), "candidates", len(out))
	return out
}

// Tally counts candidate occurrences across a batch and remembers the order
// in which each distinct candidate was first seen.
type Tally struct {
	order  []string
	counts map[string]int
	total  int
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add records one occurrence of each candidate.
func (t *Tally) Add(candidates ...string) {
	for _, q := range candidates {
		if _, ok := t.counts[q]; !ok {
			t.order = append(t.order, q)
		}
		t.counts[q]++
		t.total++
	}
}

// Candidates returns the distinct candidates in first-seen order.
func (t *Tally) Candidates() []string {
	return slices.Clone(t.order)
}

// Counts returns the occurrence count of every distinct candidate.
func (t *Tally) Counts() map[string]int {
	return maps.Clone(t.counts)
}

// Count returns the occurrences of q.
func (t *Tally) Count(q string) int {
	return t.counts[q]
}

// Distinct returns the number of distinct candidates.
func (t *Tally) Distinct() int {
	return len(t.order)
}

// Total returns the number of occurrences recorded, repeats included.
func (t *Tally) Total() int {
	return t.total
}

// Empty reports whether nothing has been recorded.
func (t *Tally) Empty() bool {
	return t.total == 0
}
