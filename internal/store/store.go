// Package store persists ledger snapshots for recovery across restarts.
package store

import (
	"context"

	"github.com/warehub/relay/pkg/models"
)

// Snapshot is the durable representation of the ledger: the full ordered
// sequence of orders plus the next-identifier counter.
type Snapshot struct {
	Orders []*models.Order `json:"orders"`
	NextID int64           `json:"next_id"`
}

// SnapshotStore defines interface for persisting ledger snapshots.
type SnapshotStore interface {
	// Save durably commits the given snapshot, replacing any previous one.
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves the latest persisted snapshot. A missing or unreadable
	// snapshot yields an empty one, never an error the caller must handle
	// at startup.
	Load(ctx context.Context) (*Snapshot, error)
}

// EmptySnapshot returns a snapshot for a fresh ledger with the counter at 1.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Orders: []*models.Order{}, NextID: 1}
}
