package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
)

// Ensure SnapshotRepo implements SnapshotRepository
var _ repositories.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implements SnapshotRepository using PostgreSQL
type SnapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Append stores a new snapshot for a wallet
func (r *SnapshotRepo) Append(ctx context.Context, snap *entities.Snapshot) error {
	query := `
		INSERT INTO wallet_snapshots (wallet, total_unclaimed_lamports, positions_count, taken_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowContext(ctx, query,
		snap.Wallet,
		snap.TotalUnclaimedLamports,
		snap.PositionsCount,
		snap.TakenAt,
	).Scan(&snap.ID); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent snapshot for a wallet.
// The id tiebreak keeps ordering stable for snapshots taken in the same instant.
func (r *SnapshotRepo) GetLatest(ctx context.Context, wallet string) (*entities.Snapshot, error) {
	var snap entities.Snapshot
	query := `
		SELECT * FROM wallet_snapshots
		WHERE wallet = $1
		ORDER BY taken_at DESC, id DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &snap, query, wallet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return &snap, nil
}

// GetRecent retrieves the most recent snapshots for a wallet, newest first
func (r *SnapshotRepo) GetRecent(ctx context.Context, wallet string, limit int) ([]entities.Snapshot, error) {
	var snaps []entities.Snapshot
	query := `
		SELECT * FROM wallet_snapshots
		WHERE wallet = $1
		ORDER BY taken_at DESC, id DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &snaps, query, wallet, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent snapshots: %w", err)
	}

	return snaps, nil
}
