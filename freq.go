// Package freq finds the questions that recur across a batch of exam papers.
//
// An Analyzer wires text extraction, question filtering, semantic clustering
// and a result store into one pipeline:
//
//	cfg, _ := config.Load("")
//	a, err := freq.NewAnalyzer(ctx, cfg)
//	if err != nil { ... }
//	defer a.Close()
//	results, report, err := a.Analyze(ctx, []string{"2021.pdf", "2022.docx"})
package freq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Winter-Soldier02/FreQ/ai"
	"github.com/Winter-Soldier02/FreQ/ai/openai"
	"github.com/Winter-Soldier02/FreQ/analysis"
	"github.com/Winter-Soldier02/FreQ/cluster"
	"github.com/Winter-Soldier02/FreQ/config"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/extract"
	"github.com/Winter-Soldier02/FreQ/questions"
	"github.com/Winter-Soldier02/FreQ/store"
	"github.com/Winter-Soldier02/FreQ/store/badger"
	"github.com/Winter-Soldier02/FreQ/store/file"
	"github.com/Winter-Soldier02/FreQ/store/postgres"
)

// Analyzer runs analyses and serves their persisted results.
type Analyzer struct {
	results  store.ResultStore
	provider ai.AIProvider
	pipeline *analysis.Pipeline
	logger   *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerOptions)

type analyzerOptions struct {
	provider    ai.AIProvider
	results     store.ResultStore
	extractOpts []extract.Option
	progress    io.Writer
	logger      *slog.Logger
}

// WithProvider replaces the OpenAI-compatible embedding provider.
// The Analyzer closes it.
func WithProvider(provider ai.AIProvider) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.provider = provider
	}
}

// WithResultStore replaces the store selected by the configuration.
// The Analyzer closes it.
func WithResultStore(results store.ResultStore) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.results = results
	}
}

// WithExtractOptions passes options through to the text extractor.
func WithExtractOptions(opts ...extract.Option) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.extractOpts = append(o.extractOpts, opts...)
	}
}

// WithProgress reports extraction progress to w.
func WithProgress(w io.Writer) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.logger = logger
	}
}

// OpenStore opens the result store the configuration selects.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ResultStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Store.Backend {
	case config.BackendBadger:
		return badger.NewStore(cfg.Store.Path, badger.WithLogger(logger))
	case config.BackendMemory:
		return badger.NewMemoryStore(badger.WithLogger(logger))
	case config.BackendFile:
		return file.NewStore(cfg.Store.Path, file.WithLogger(logger))
	case config.BackendPostgres:
		return postgres.NewStore(ctx, cfg.Store.DatabaseURL, postgres.WithLogger(logger))
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Store.Backend)
	}
}

// NewAnalyzer builds an Analyzer from cfg.
func NewAnalyzer(ctx context.Context, cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &analyzerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	a := &Analyzer{
		results:  options.results,
		provider: options.provider,
		logger:   logger,
	}

	var err error
	if a.results == nil {
		if a.results, err = OpenStore(ctx, cfg, logger); err != nil {
			return nil, fmt.Errorf("failed to open result store: %w", err)
		}
	}
	if a.provider == nil {
		if a.provider, err = openai.NewProvider(cfg.AIConfig()); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create embedding provider: %w", err)
		}
	}

	if err := a.buildPipeline(cfg, options); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) buildPipeline(cfg *config.Config, options *analyzerOptions) error {
	extractOpts := append([]extract.Option{extract.WithLogger(a.logger)}, options.extractOpts...)
	extractor, err := extract.New(cfg.ExtractConfig(), extractOpts...)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	segmenter, err := questions.NewPunktSegmenter()
	if err != nil {
		return fmt.Errorf("failed to create segmenter: %w", err)
	}
	filter, err := questions.NewFilter(segmenter, questions.WithLogger(a.logger))
	if err != nil {
		return err
	}

	clusterer, err := cluster.NewClusterer(a.provider.Embedder(),
		cluster.WithThreshold(cfg.Clustering.Threshold),
		cluster.WithRetry(cfg.Pipeline.MaxRetries, cfg.Pipeline.RetryDelay),
		cluster.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create clusterer: %w", err)
	}

	a.pipeline, err = analysis.NewPipeline(extractor, filter, clusterer, a.results,
		analysis.WithPoolSize(cfg.Pipeline.PoolSize),
		analysis.WithRetry(cfg.Pipeline.MaxRetries, cfg.Pipeline.RetryDelay),
		analysis.WithProgress(options.progress),
		analysis.WithLogger(a.logger),
	)
	return err
}

// Documents turns paths into documents. Paths with an unsupported extension
// are all reported together, wrapping core.ErrUnsupportedFormat.
func Documents(paths []string) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(paths))
	var errs []error
	for _, path := range paths {
		doc := core.NewDocument(path)
		if err := core.ValidateDocument(doc); err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return docs, nil
}

// Analyze extracts, filters and clusters the files at paths and persists the
// result. Unsupported files are rejected before anything is read. Errors
// follow analysis.Pipeline.Analyze.
func (a *Analyzer) Analyze(ctx context.Context, paths []string) (core.ResultSet, *core.BatchReport, error) {
	docs, err := Documents(paths)
	if err != nil {
		return nil, nil, err
	}
	return a.AnalyzeDocuments(ctx, docs)
}

// AnalyzeDocuments is Analyze for documents that may carry their bytes in memory.
func (a *Analyzer) AnalyzeDocuments(ctx context.Context, docs []core.Document) (core.ResultSet, *core.BatchReport, error) {
	return a.pipeline.Analyze(ctx, docs)
}

// Results returns the persisted snapshot ranked by frequency.
func (a *Analyzer) Results(ctx context.Context) (core.ResultSet, error) {
	rs, err := a.results.Load(ctx)
	if err != nil {
		return nil, err
	}
	return rs.Ranked(), nil
}

// Info describes the persisted snapshot, or returns nil when the store keeps
// no metadata or nothing was persisted yet.
func (a *Analyzer) Info(ctx context.Context) (*store.SnapshotInfo, error) {
	inspector, ok := a.results.(store.Inspector)
	if !ok {
		return nil, nil
	}
	return inspector.Info(ctx)
}

// Close releases the pipeline, the embedding provider and the store.
func (a *Analyzer) Close() error {
	if a.pipeline != nil {
		a.pipeline.Release()
	}

	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing embedding provider", "err", err)
		}
	}

	if a.results != nil {
		if err := a.results.Close(); err != nil {
			a.logger.Error("error closing result store", "err", err)
			return err
		}
	}
	return nil
}
