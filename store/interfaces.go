package store

import (
	"context"
	"time"

	"github.com/Winter-Soldier02/FreQ/core"
)

// ResultStore persists the latest ResultSet.
// Implementations must be safe for concurrent use.
type ResultStore interface {
	// Persist replaces the stored snapshot with rs. On failure the previous
	// snapshot stays intact.
	Persist(ctx context.Context, rs core.ResultSet) error

	// Load returns the stored snapshot, or an empty ResultSet if none exists.
	Load(ctx context.Context) (core.ResultSet, error)

	// Close releases resources held by the store.
	Close() error
}

// Inspector is implemented by stores that can describe their snapshot
// without decoding it.
type Inspector interface {
	// Info returns nil, nil when nothing was ever persisted.
	Info(ctx context.Context) (*SnapshotInfo, error)
}

// SnapshotInfo summarizes a stored snapshot.
type SnapshotInfo struct {
	Groups    int
	Frequency int
	SavedAt   time.Time
}

// NewSnapshotInfo summarizes rs as saved at savedAt.
func NewSnapshotInfo(rs core.ResultSet, savedAt time.Time) *SnapshotInfo {
	return &SnapshotInfo{
		Groups:    len(rs),
		Frequency: rs.TotalFrequency(),
		SavedAt:   savedAt.UTC(),
	}
}
