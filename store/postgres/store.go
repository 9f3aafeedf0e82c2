// Package postgres implements store.ResultStore on PostgreSQL.
//
// Each group is one row of freq_question_groups, ordered by position, with
// its variants kept as a JSONB array. Persist deletes and re-inserts every
// row inside a single transaction, so readers keep seeing the previous
// snapshot until the commit.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
)

const (
	createGroupsTable = `CREATE TABLE IF NOT EXISTS freq_question_groups (
	position INTEGER PRIMARY KEY,
	question TEXT NOT NULL,
	similar_variants JSONB NOT NULL,
	frequency INTEGER NOT NULL
)`
	createSnapshotsTable = `CREATE TABLE IF NOT EXISTS freq_snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	groups INTEGER NOT NULL,
	frequency INTEGER NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
)`

	deleteGroups = `DELETE FROM freq_question_groups`
	insertGroup  = `INSERT INTO freq_question_groups (position, question, similar_variants, frequency) VALUES ($1, $2, $3::jsonb, $4)`
	upsertInfo   = `INSERT INTO freq_snapshots (id, groups, frequency, saved_at) VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET groups = EXCLUDED.groups, frequency = EXCLUDED.frequency, saved_at = EXCLUDED.saved_at`
	selectGroups = `SELECT question, similar_variants::text, frequency FROM freq_question_groups ORDER BY position`
	selectInfo   = `SELECT groups, frequency, saved_at FROM freq_snapshots WHERE id = 1`
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements store.ResultStore on PostgreSQL.
type Store struct {
	db     DB
	logger *slog.Logger
	now    func() time.Time
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

// NewStore connects to databaseURL and creates the tables if needed.
func NewStore(ctx context.Context, databaseURL string, opts ...Option) (store.ResultStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s, err := newStore(pool, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newStore(db DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("postgres store: db required")
	}
	s := &Store{db: db, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "postgres-store")
	return s, nil
}

// Migrate creates the snapshot tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range []string{createGroupsTable, createSnapshotsTable} {
		if _, err := s.db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Persist replaces every stored group in one transaction.
func (s *Store) Persist(ctx context.Context, rs core.ResultSet) error {
	if err := core.ValidateResultSet(rs); err != nil {
		return err
	}
	variants := make([]string, len(rs))
	for i, g := range rs {
		data, err := json.Marshal(g.Variants)
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrSerializationFailed, err)
		}
		variants[i] = string(data)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.replace(ctx, tx, rs, variants); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug("persisted snapshot", "groups", len(rs))
	return nil
}

func (s *Store) replace(ctx context.Context, tx pgx.Tx, rs core.ResultSet, variants []string) error {
	if _, err := tx.Exec(ctx, deleteGroups); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	for i, g := range rs {
		if _, err := tx.Exec(ctx, insertGroup, i, g.Question, variants[i], g.Frequency); err != nil {
			return fmt.Errorf("failed to insert group %d: %w", i, err)
		}
	}
	if _, err := tx.Exec(ctx, upsertInfo, len(rs), rs.TotalFrequency(), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}

// Load reads every group in position order.
func (s *Store) Load(ctx context.Context) (core.ResultSet, error) {
	rows, err := s.db.Query(ctx, selectGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	rs := core.ResultSet{}
	for rows.Next() {
		var (
			g        core.QuestionGroup
			variants string
		)
		if err := rows.Scan(&g.Question, &variants, &g.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(variants), &g.Variants); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrSerializationFailed, err)
		}
		rs = append(rs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return rs, nil
}

// Info returns the snapshot summary, or nil if nothing was persisted.
func (s *Store) Info(ctx context.Context) (*store.SnapshotInfo, error) {
	var info store.SnapshotInfo
	err := s.db.QueryRow(ctx, selectInfo).Scan(&info.Groups, &info.Frequency, &info.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot info: %w", err)
	}
	info.SavedAt = info.SavedAt.UTC()
	return &info, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
