package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Winter-Soldier02/FreQ/cluster"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/extract"
	"github.com/Winter-Soldier02/FreQ/questions"
	"github.com/Winter-Soldier02/FreQ/retry"
	"github.com/Winter-Soldier02/FreQ/store"
)

const (
	// DefaultMaxRetries is the number of persist attempts.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base backoff between persist attempts.
	DefaultRetryDelay = time.Second
)

// Pipeline orchestrates one analysis run over a batch of documents.
type Pipeline struct {
	extractor  extract.Extractor
	filter     *questions.Filter
	clusterer  *cluster.Clusterer
	store      store.ResultStore
	pool       *ants.Pool
	progress   io.Writer
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithProgress reports extraction progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithRetry sets how often and how patiently persisting is retried.
// Default is 3 attempts with a 1s base delay.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxRetries <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		p.maxRetries = maxRetries
		p.retryDelay = delay
		return nil
	}
}

// NewPipeline creates a new analysis pipeline.
func NewPipeline(
	extractor extract.Extractor,
	filter *questions.Filter,
	clusterer *cluster.Clusterer,
	results store.ResultStore,
	opts ...Option,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if filter == nil {
		return nil, ErrFilterRequired
	}
	if clusterer == nil {
		return nil, ErrClustererRequired
	}
	if results == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		extractor:  extractor,
		filter:     filter,
		clusterer:  clusterer,
		store:      results,
		pool:       pool,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// Analyze runs the pipeline over docs.
//
// On success the ResultSet has been persisted. core.ErrNoQuestionsFound is
// returned when no document yielded a candidate, and the store is left
// untouched. If every document failed, the joined *core.DocumentError values
// are returned instead. When persisting fails the ResultSet and report are
// still returned, with an error wrapping core.ErrPersistenceFailure.
func (p *Pipeline) Analyze(ctx context.Context, docs []core.Document) (core.ResultSet, *core.BatchReport, error) {
	report := &core.BatchReport{Documents: p.extractAll(ctx, docs)}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	tally := questions.NewTally()
	var failures []error
	for i := range report.Documents {
		result := &report.Documents[i]
		if !result.OK() {
			p.logger.Warn("document skipped", "document", result.Document.Name(), "error", result.Err)
			failures = append(failures, result.Err)
			continue
		}
		candidates := p.filter.Candidates(result.Text)
		result.Candidates = len(candidates)
		tally.Add(candidates...)
	}
	report.Candidates = tally.Total()
	report.Distinct = tally.Distinct()

	if len(docs) > 0 && len(failures) == len(docs) {
		return nil, report, errors.Join(failures...)
	}
	if tally.Empty() {
		return nil, report, core.ErrNoQuestionsFound
	}

	results, err := p.clusterer.Cluster(ctx, tally.Candidates(), tally.Counts())
	if err != nil {
		return nil, report, fmt.Errorf("clustering candidates: %w", err)
	}

	if err := p.persist(ctx, results); err != nil {
		return results, report, fmt.Errorf("%w: %w", core.ErrPersistenceFailure, err)
	}

	p.logger.Info("analysis complete",
		"documents", len(docs),
		"failed", len(failures),
		"candidates", report.Candidates,
		"distinct", report.Distinct,
		"groups", len(results))
	return results, report, nil
}

// extractAll extracts every document on the worker pool. Results keep the
// input order regardless of completion order.
func (p *Pipeline) extractAll(ctx context.Context, docs []core.Document) []core.DocumentResult {
	results := make([]core.DocumentResult, len(docs))

	var tracker *ProgressTracker
	if p.progress != nil && len(docs) > 0 {
		tracker = NewProgressTracker(p.progress, len(docs), 1)
		tracker.Start()
	}

	var wg sync.WaitGroup
	for i, doc := range docs {
		results[i].Document = doc
		task := func() {
			defer wg.Done()
			text, err := p.extractor.Extract(ctx, doc)
			results[i].Text = text
			results[i].Err = err
			if tracker != nil {
				tracker.Done(err)
			}
		}

		wg.Add(1)
		if err := p.pool.Submit(task); err != nil {
			p.logger.Debug("pool rejected task, extracting inline", "document", doc.Name(), "error", err)
			task()
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}
	return results
}

func (p *Pipeline) persist(ctx context.Context, results core.ResultSet) error {
	return retry.WithBackoff(ctx, func() error {
		err := p.store.Persist(ctx, results)
		if errors.Is(err, core.ErrInvalidResultSet) || errors.Is(err, store.ErrStoreClosed) {
			return retry.Permanent(err)
		}
		if err != nil {
			p.logger.Debug("persist attempt failed", "error", err)
		}
		return err
	}, p.maxRetries, p.retryDelay)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
