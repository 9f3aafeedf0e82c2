package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
)

// Store implements store.ResultStore on BadgerDB. The snapshot and its
// summary are written in one transaction, so readers see either the old
// pair or the new pair.
type Store struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var (
	_ store.ResultStore = (*Store)(nil)
	_ store.Inspector   = (*Store)(nil)
)

// Option configures a Store.
type Option func(*storeOptions) error

type storeOptions struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewStore opens a BadgerDB result store in dirPath.
func NewStore(dirPath string, opts ...Option) (store.ResultStore, error) {
	return open(dirPath, false, opts...)
}

// NewMemoryStore opens an in-memory BadgerDB result store for testing.
func NewMemoryStore(opts ...Option) (store.ResultStore, error) {
	return open("", true, opts...)
}

func open(dirPath string, inMemory bool, opts ...Option) (*Store, error) {
	o := &storeOptions{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	backend, err := OpenBackend(dirPath, inMemory, o.logger)
	if err != nil {
		return nil, err
	}
	s := newStore(backend, o.logger)
	s.ownsBackend = true
	return s, nil
}

// newStore wraps an already open backend. The caller keeps ownership.
func newStore(backend *Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With("component", "badger-store"),
	}
}

// Persist replaces the snapshot.
func (s *Store) Persist(ctx context.Context, rs core.ResultSet) error {
	if s.backend.IsClosed() {
		return store.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := store.MarshalResultSet(rs)
	if err != nil {
		return err
	}
	info := store.NewSnapshotInfo(rs, time.Now())

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSnapshotKey(), data); err != nil {
			return err
		}
		m := meta{info: info, checksum: snapshotChecksum(data)}
		if err := tx.Set(makeMetaKey(), marshalMeta(m)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("persisted snapshot", "groups", info.Groups, "frequency", info.Frequency)
	return nil
}

// Load returns the stored snapshot or an empty ResultSet.
func (s *Store) Load(ctx context.Context) (core.ResultSet, error) {
	if s.backend.IsClosed() {
		return nil, store.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs := core.ResultSet{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotKey())
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		m, err := readMeta(tx)
		if err != nil {
			return err
		}
		if m != nil && m.checksum != snapshotChecksum(data) {
			return fmt.Errorf("%w: snapshot checksum mismatch", store.ErrSerializationFailed)
		}

		rs, err = store.UnmarshalResultSet(data)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Info returns the snapshot summary, or nil if nothing was persisted.
func (s *Store) Info(ctx context.Context) (*store.SnapshotInfo, error) {
	if s.backend.IsClosed() {
		return nil, store.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var info *store.SnapshotInfo
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		m, err := readMeta(tx)
		if m != nil {
			info = m.info
		}
		return err
	}, false)
	return info, err
}

// readMeta returns nil when no snapshot was ever persisted.
func readMeta(tx *badger.Txn) (*meta, error) {
	item, err := tx.Get(makeMetaKey())
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var m meta
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		m, unmarshalErr = unmarshalMeta(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Close closes the underlying database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsBackend || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
