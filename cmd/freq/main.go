package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	freq "github.com/Winter-Soldier02/FreQ"
	"github.com/Winter-Soldier02/FreQ/config"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/extract"
	"github.com/Winter-Soldier02/FreQ/store"
)

// errNoQuestions is printed when a batch yields no candidate questions.
var errNoQuestions = errors.New("documents do not contain any valid questions")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "freq",
		Usage: "Find the questions that recur across exam papers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a freq.yaml configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Extract, deduplicate and count the questions in PDF and DOCX files",
				ArgsUsage: "FILE...",
				Action:    analyzeCommand,
				Flags: append(storeFlags(),
					&cli.Float64Flag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Cosine similarity a question must exceed to join a group",
						Value:   0.75,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.IntFlag{
						Name:  "dpi",
						Usage: "Resolution scanned pages are rendered at for OCR",
						Value: 300,
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Tesseract language",
						Value: "eng",
					},
					&cli.BoolFlag{
						Name:  "keep-cleaned",
						Usage: "Write the watermark-free copy next to each source file",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of documents extracted concurrently (default NumCPU/2)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding and saving",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: config.Default().Pipeline.RetryDelay,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report progress",
					},
					&cli.BoolFlag{
						Name:  "variants",
						Usage: "List every variant of each question",
					},
				),
			},
			{
				Name:   "report",
				Usage:  "Show the questions from the last analysis, most frequent first",
				Action: reportCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Show at most N questions (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "variants",
						Usage: "List every variant of each question",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the saved snapshot as JSON",
					},
				),
			},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "Result store backend (badger, file, postgres, memory)",
			Value: config.BackendBadger,
		},
		&cli.StringFlag{
			Name:    "store-path",
			Aliases: []string{"d"},
			Usage:   "Badger directory or JSON results file",
			Value:   config.DefaultStorePath,
		},
		&cli.StringFlag{
			Name:  "database-url",
			Usage: "PostgreSQL connection URL for the postgres backend",
		},
	}
}

// loadConfig reads the configuration file and applies flags the user set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("store") {
		cfg.Store.Backend = c.String("store")
	}
	if c.IsSet("store-path") {
		cfg.Store.Path = c.String("store-path")
	}
	if c.IsSet("database-url") {
		cfg.Store.DatabaseURL = c.String("database-url")
	}
	if c.IsSet("threshold") {
		cfg.Clustering.Threshold = c.Float64("threshold")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("dpi") {
		cfg.OCR.DPI = c.Int("dpi")
	}
	if c.IsSet("lang") {
		cfg.OCR.Language = c.String("lang")
	}
	if c.IsSet("keep-cleaned") {
		cfg.OCR.KeepCleaned = c.Bool("keep-cleaned")
	}
	if c.IsSet("pool-size") {
		cfg.Pipeline.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("max-retries") {
		cfg.Pipeline.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		cfg.Pipeline.RetryDelay = c.Duration("retry-delay")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func analyzeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one FILE is required")
	}
	docs, err := freq.Documents(c.Args().Slice())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := extract.CheckAvailable(cfg.ExtractConfig()); err != nil {
		slog.Warn("OCR unavailable, scanned pages will be read as empty", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress io.Writer
	if !c.Bool("quiet") {
		progress = c.App.ErrWriter
	}
	analyzer, err := freq.NewAnalyzer(ctx, cfg, freq.WithProgress(progress))
	if err != nil {
		return err
	}
	defer analyzer.Close()

	out := c.App.Writer
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintf(c.App.ErrWriter, "Threshold: %.2f\n\n", cfg.Clustering.Threshold)

	results, report, err := analyzer.AnalyzeDocuments(ctx, docs)
	if report != nil {
		printBatchReport(out, report)
	}
	if errors.Is(err, core.ErrNoQuestionsFound) {
		return errNoQuestions
	}
	if err != nil && results == nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printGroups(out, results.Ranked(), 0, c.Bool("variants"))
	if err != nil {
		return fmt.Errorf("results were not saved: %w", err)
	}
	return nil
}

func reportCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	results, err := freq.OpenStore(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer results.Close()

	rs, err := results.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	out := c.App.Writer
	if c.Bool("json") {
		data, err := store.MarshalResultSetIndent(rs)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(rs) == 0 {
		fmt.Fprintln(out, "no analysis results")
		return nil
	}

	if inspector, ok := results.(store.Inspector); ok {
		info, err := inspector.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to read snapshot info: %w", err)
		}
		if info != nil {
			printSnapshotInfo(out, info)
		}
	}

	limit := c.Int("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	printGroups(out, rs.Ranked(), limit, c.Bool("variants"))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
