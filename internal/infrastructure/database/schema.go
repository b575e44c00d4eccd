package database

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id BIGSERIAL PRIMARY KEY,
	device_token TEXT NOT NULL,
	wallet TEXT NOT NULL,
	platform TEXT NOT NULL DEFAULT 'ios',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (device_token, wallet)
);

CREATE TABLE IF NOT EXISTS wallet_snapshots (
	id BIGSERIAL PRIMARY KEY,
	wallet TEXT NOT NULL,
	total_unclaimed_lamports BIGINT NOT NULL DEFAULT 0,
	positions_count INT NOT NULL DEFAULT 0,
	taken_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notification_history (
	id BIGSERIAL PRIMARY KEY,
	wallet TEXT NOT NULL,
	type TEXT NOT NULL,
	payload TEXT,
	sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_wallet ON subscriptions(wallet);
CREATE INDEX IF NOT EXISTS idx_subscriptions_device ON subscriptions(device_token);
CREATE INDEX IF NOT EXISTS idx_snapshots_wallet ON wallet_snapshots(wallet, taken_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_wallet ON notification_history(wallet, sent_at DESC);
`

// Bootstrap creates the schema if it does not exist yet
func (p *PostgresDB) Bootstrap(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}
