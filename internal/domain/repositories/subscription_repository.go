package repositories

import (
	"context"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// Upsert creates a subscription or replaces an existing
	// (device_token, wallet) row
	Upsert(ctx context.Context, sub *entities.Subscription) error

	// Delete removes the subscription for (deviceToken, wallet).
	// Returns ErrNotFound when no matching row existed.
	Delete(ctx context.Context, deviceToken, wallet string) error

	// ListByDevice retrieves all subscriptions for a device
	ListByDevice(ctx context.Context, deviceToken string) ([]entities.Subscription, error)

	// ListByWallet retrieves all subscriptions watching a wallet
	ListByWallet(ctx context.Context, wallet string) ([]entities.Subscription, error)

	// DistinctWallets retrieves the distinct set of subscribed wallets
	DistinctWallets(ctx context.Context) ([]string, error)
}
