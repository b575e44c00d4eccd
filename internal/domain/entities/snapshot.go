package entities

import (
	"time"
)

// Snapshot is an append-only record of a wallet's aggregate unclaimed value.
// For a given wallet the latest snapshot is the one with maximum TakenAt.
type Snapshot struct {
	ID                     int64     `db:"id" json:"id"`
	Wallet                 string    `db:"wallet" json:"wallet"`
	TotalUnclaimedLamports int64     `db:"total_unclaimed_lamports" json:"totalUnclaimedLamports"`
	PositionsCount         int       `db:"positions_count" json:"positionsCount"`
	TakenAt                time.Time `db:"taken_at" json:"takenAt"`
}
