// Package config loads FreQ settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Winter-Soldier02/FreQ/ai"
	"github.com/Winter-Soldier02/FreQ/cluster"
	"github.com/Winter-Soldier02/FreQ/extract"
)

// Store backends.
const (
	BackendBadger   = "badger"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultStorePath is where the badger backend keeps its data.
const DefaultStorePath = "./freq-data"

// FileName is the configuration file looked up when no path is given.
const FileName = "freq.yaml"

// Environment overrides.
const (
	EnvEmbeddingHost  = "FREQ_EMBEDDING_HOST"
	EnvEmbeddingModel = "FREQ_EMBEDDING_MODEL"
	EnvEmbeddingToken = "FREQ_EMBEDDING_TOKEN"
	EnvDatabaseURL    = "FREQ_DATABASE_URL"
	EnvStorePath      = "FREQ_STORE_PATH"
)

var (
	// ErrInvalidConfig is returned by Validate for out of range settings.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the full application configuration.
type Config struct {
	Embedding struct {
		Host  string `yaml:"host"`
		Model string `yaml:"model"`
		Token string `yaml:"token"`
	} `yaml:"embedding"`

	Clustering struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"clustering"`

	OCR struct {
		DPI         int    `yaml:"dpi"`
		Language    string `yaml:"language"`
		KeepCleaned bool   `yaml:"keep_cleaned"`
		Rasterizer  string `yaml:"rasterizer"`
		Recognizer  string `yaml:"recognizer"`
	} `yaml:"ocr"`

	Store struct {
		Backend     string `yaml:"backend"`
		Path        string `yaml:"path"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"store"`

	Pipeline struct {
		PoolSize   int           `yaml:"pool_size"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"pipeline"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Embedding.Host = ai.DefaultHost
	cfg.Embedding.Model = ai.DefaultEmbeddingModel
	cfg.Clustering.Threshold = cluster.DefaultThreshold
	cfg.OCR.DPI = extract.DefaultDPI
	cfg.OCR.Language = extract.DefaultLanguage
	cfg.OCR.Rasterizer = extract.DefaultRasterizer
	cfg.OCR.Recognizer = extract.DefaultRecognizer
	cfg.Store.Backend = BackendBadger
	cfg.Store.Path = DefaultStorePath
	cfg.Pipeline.PoolSize = max(runtime.NumCPU()/2, 1)
	cfg.Pipeline.MaxRetries = cluster.DefaultMaxRetries
	cfg.Pipeline.RetryDelay = cluster.DefaultRetryDelay
	return cfg
}

// Load reads the configuration. An empty path searches the working directory
// and then ~/.config/freq; when no file exists the defaults are used.
// Settings missing from the file keep their defaults, and environment
// variables override both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = locate()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	mergeWithEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func locate() string {
	locations := []string{FileName, "freq.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "freq", FileName))
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

func mergeWithEnv(cfg *Config) {
	if host := os.Getenv(EnvEmbeddingHost); host != "" {
		cfg.Embedding.Host = host
	}
	if model := os.Getenv(EnvEmbeddingModel); model != "" {
		cfg.Embedding.Model = model
	}
	if token := os.Getenv(EnvEmbeddingToken); token != "" {
		cfg.Embedding.Token = token
	}
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.Store.DatabaseURL = url
	}
	if path := os.Getenv(EnvStorePath); path != "" {
		cfg.Store.Path = path
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Clustering.Threshold < -1 || c.Clustering.Threshold > 1 {
		return fmt.Errorf("%w: clustering threshold %v outside [-1, 1]", ErrInvalidConfig, c.Clustering.Threshold)
	}
	if c.Pipeline.PoolSize <= 0 {
		return fmt.Errorf("%w: pool_size must be greater than 0", ErrInvalidConfig)
	}
	if c.Pipeline.MaxRetries <= 0 {
		return fmt.Errorf("%w: max_retries must be greater than 0", ErrInvalidConfig)
	}
	if c.Pipeline.RetryDelay < 0 {
		return fmt.Errorf("%w: retry_delay must not be negative", ErrInvalidConfig)
	}

	switch c.Store.Backend {
	case BackendBadger, BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store path is required for the %s backend", ErrInvalidConfig, c.Store.Backend)
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.ExtractConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig returns the embedding service settings.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIToken(c.Embedding.Token),
	)
}

// ExtractConfig returns the text extraction settings.
func (c *Config) ExtractConfig() *extract.Config {
	return extract.NewConfig(
		extract.WithDPI(c.OCR.DPI),
		extract.WithLanguage(c.OCR.Language),
		extract.WithKeepCleaned(c.OCR.KeepCleaned),
		extract.WithToolPaths(c.OCR.Rasterizer, c.OCR.Recognizer),
	)
}
