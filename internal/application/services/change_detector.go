package services

import (
	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// DetectEarnings compares a freshly computed unclaimed total against the
// latest stored snapshot and reports whether new earnings appeared.
//
// With no previous snapshot the call only establishes the baseline and never
// fires. A decrease or no change never fires either: claiming funds reduces
// the unclaimed balance and must not be mistaken for new earnings.
func DetectEarnings(wallet string, currentLamports int64, prev *entities.Snapshot, priceUSD float64) *entities.EarningsEvent {
	if prev == nil {
		return nil
	}
	if currentLamports <= prev.TotalUnclaimedLamports {
		return nil
	}

	delta := currentLamports - prev.TotalUnclaimedLamports
	sol := float64(delta) / entities.LamportsPerSOL

	return &entities.EarningsEvent{
		Wallet:        wallet,
		DeltaLamports: delta,
		DeltaSOL:      sol,
		DeltaUSD:      sol * priceUSD,
	}
}
