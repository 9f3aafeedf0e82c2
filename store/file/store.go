// Package file implements store.ResultStore as a single JSON file.
//
// Every Persist writes a temporary file in the target directory and renames
// it over the snapshot, so a concurrent reader sees either the old or the new
// file and never a partial one.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
)

// DefaultName is the snapshot file name used when a directory is given.
const DefaultName = "analysis_results.json"

// Store keeps the snapshot in one JSON file.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serializes writers within the process; rename keeps readers safe.
	mu     sync.Mutex
	closed bool
}

var (
	_ store.ResultStore = (*Store)(nil)
	_ store.Inspector   = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a file store at path. If path is an existing directory
// the snapshot is kept in DefaultName inside it.
func NewStore(path string, opts ...Option) (store.ResultStore, error) {
	if path == "" {
		return nil, errors.New("file store: path required")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}

	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "file-store", "path", path)
	return s, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Persist atomically replaces the snapshot file.
func (s *Store) Persist(ctx context.Context, rs core.ResultSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := store.MarshalResultSetIndent(rs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrStoreClosed
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.logger.Debug("persisted snapshot", "groups", len(rs))
	return nil
}

// Load reads the snapshot file. A missing file is an empty ResultSet.
func (s *Store) Load(ctx context.Context) (core.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, store.ErrStoreClosed
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return core.ResultSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return store.UnmarshalResultSet(data)
}

// Info decodes the snapshot to summarize it; SavedAt is the file mtime.
func (s *Store) Info(ctx context.Context) (*store.SnapshotInfo, error) {
	if s.isClosed() {
		return nil, store.ErrStoreClosed
	}
	stat, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewSnapshotInfo(rs, stat.ModTime()), nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the store closed. The file is left in place.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
