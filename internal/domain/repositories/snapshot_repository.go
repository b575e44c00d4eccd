package repositories

import (
	"context"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// SnapshotRepository defines the interface for wallet snapshot data operations.
// Snapshots are append-only; nothing updates or deletes them.
type SnapshotRepository interface {
	// Append stores a new snapshot for a wallet
	Append(ctx context.Context, snap *entities.Snapshot) error

	// GetLatest retrieves the snapshot with the maximum taken_at for a wallet.
	// Returns (nil, nil) when the wallet has no snapshots yet.
	GetLatest(ctx context.Context, wallet string) (*entities.Snapshot, error)

	// GetRecent retrieves the most recent snapshots for a wallet, newest first
	GetRecent(ctx context.Context, wallet string, limit int) ([]entities.Snapshot, error)
}
