package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
)

// Ensure SubscriptionRepo implements SubscriptionRepository
var _ repositories.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implements SubscriptionRepository using PostgreSQL
type SubscriptionRepo struct {
	db *sqlx.DB
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// Upsert creates or replaces a subscription row
func (r *SubscriptionRepo) Upsert(ctx context.Context, sub *entities.Subscription) error {
	query := `
		INSERT INTO subscriptions (device_token, wallet, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_token, wallet) DO UPDATE SET
			platform = EXCLUDED.platform
	`

	_, err := r.db.ExecContext(ctx, query, sub.DeviceToken, sub.Wallet, sub.Platform)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// Delete removes a subscription by (deviceToken, wallet)
func (r *SubscriptionRepo) Delete(ctx context.Context, deviceToken, wallet string) error {
	query := `DELETE FROM subscriptions WHERE device_token = $1 AND wallet = $2`

	result, err := r.db.ExecContext(ctx, query, deviceToken, wallet)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// ListByDevice retrieves all subscriptions for a device
func (r *SubscriptionRepo) ListByDevice(ctx context.Context, deviceToken string) ([]entities.Subscription, error) {
	var subs []entities.Subscription
	query := `SELECT * FROM subscriptions WHERE device_token = $1 ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &subs, query, deviceToken); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions by device: %w", err)
	}

	return subs, nil
}

// ListByWallet retrieves all subscriptions watching a wallet
func (r *SubscriptionRepo) ListByWallet(ctx context.Context, wallet string) ([]entities.Subscription, error) {
	var subs []entities.Subscription
	query := `SELECT * FROM subscriptions WHERE wallet = $1 ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &subs, query, wallet); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions by wallet: %w", err)
	}

	return subs, nil
}

// DistinctWallets retrieves the distinct set of subscribed wallets
func (r *SubscriptionRepo) DistinctWallets(ctx context.Context) ([]string, error) {
	var wallets []string
	query := `SELECT DISTINCT wallet FROM subscriptions`

	if err := r.db.SelectContext(ctx, &wallets, query); err != nil {
		return nil, fmt.Errorf("failed to list distinct wallets: %w", err)
	}

	return wallets, nil
}
