package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Winter-Soldier02/FreQ/ai"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/retry"
)

const (
	// DefaultThreshold is the similarity a candidate must strictly exceed to
	// join a group.
	DefaultThreshold = 0.75

	// DefaultMaxRetries is the number of embedding attempts before giving up.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base backoff between embedding attempts.
	DefaultRetryDelay = time.Second
)

// Clusterer groups candidate questions by embedding similarity.
type Clusterer struct {
	embedder   ai.Embedder
	threshold  float64
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Clusterer.
type Option func(*Clusterer) error

// WithThreshold sets the similarity threshold.
// Default is 0.75.
func WithThreshold(threshold float64) Option {
	return func(c *Clusterer) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
		}
		c.threshold = threshold
		return nil
	}
}

// WithRetry sets how often and how patiently the embedder is retried.
// Default is 3 attempts with a 1s base delay.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Clusterer) error {
		if maxRetries <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		c.maxRetries = maxRetries
		c.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clusterer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClusterer creates a new clusterer.
func NewClusterer(embedder ai.Embedder, opts ...Option) (*Clusterer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Clusterer{
		embedder:   embedder,
		threshold:  DefaultThreshold,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "clusterer")

	return c, nil
}

// Threshold returns the similarity threshold in use.
func (c *Clusterer) Threshold() float64 {
	return c.threshold
}

// Cluster groups candidates, which must be distinct and in first-seen order.
// counts maps each candidate to its occurrence count; a missing entry counts
// as one occurrence.
func (c *Clusterer) Cluster(ctx context.Context, candidates []string, counts map[string]int) (core.ResultSet, error) {
	return c.ClusterWithMonitor(ctx, candidates, counts, nil)
}

// ClusterWithMonitor clusters candidates and reports each step to monitor.
func (c *Clusterer) ClusterWithMonitor(ctx context.Context, candidates []string, counts map[string]int, monitor Monitor) (core.ResultSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(len(candidates))

	results := core.ResultSet{}
	if len(candidates) == 0 {
		monitor.Finish(results)
		return results, nil
	}

	vectors, err := c.embed(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(vectors[0]) > 0 {
		monitor.AfterEmbedding(len(vectors[0]))
	}

	assigned := make([]bool, len(candidates))
	for i, representative := range candidates {
		if assigned[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		assigned[i] = true

		group := core.QuestionGroup{
			Question:  representative,
			Variants:  []string{representative},
			Frequency: occurrences(counts, representative),
		}
		for j := i + 1; j < len(candidates); j++ {
			if assigned[j] {
				continue
			}
			similarity, err := CosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				return nil, fmt.Errorf("comparing %q and %q: %w", representative, candidates[j], err)
			}
			if similarity > c.threshold {
				assigned[j] = true
				group.Variants = append(group.Variants, candidates[j])
				group.Frequency += occurrences(counts, candidates[j])
				monitor.Merged(representative, candidates[j], similarity)
			}
		}

		monitor.GroupSealed(group)
		results = append(results, group)
	}

	c.logger.Debug("clustered candidates", "candidates", len(candidates), "groups", len(results), "threshold", c.threshold)
	monitor.Finish(results)
	return results, nil
}

func (c *Clusterer) embed(ctx context.Context, candidates []string) ([][]float32, error) {
	var vectors [][]float32
	err := retry.WithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = c.embedder.EmbedTexts(ctx, candidates)
		return embedErr
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding %d candidates: %w", len(candidates), err)
	}
	if len(vectors) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingMismatch, len(vectors), len(candidates))
	}
	return vectors, nil
}

func occurrences(counts map[string]int, candidate string) int {
	if n, ok := counts[candidate]; ok && n > 0 {
		return n
	}
	return 1
}
