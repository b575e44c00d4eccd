package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
)

// Ensure NotificationRepo implements NotificationRepository
var _ repositories.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implements NotificationRepository using PostgreSQL
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Append stores a new notification record
func (r *NotificationRepo) Append(ctx context.Context, rec *entities.NotificationRecord) error {
	query := `
		INSERT INTO notification_history (wallet, type, payload, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowContext(ctx, query,
		rec.Wallet,
		rec.Type,
		rec.Payload,
		rec.SentAt,
	).Scan(&rec.ID); err != nil {
		return fmt.Errorf("failed to append notification record: %w", err)
	}

	return nil
}

// GetRecent retrieves the most recent records for a wallet, newest first
func (r *NotificationRepo) GetRecent(ctx context.Context, wallet string, limit int) ([]entities.NotificationRecord, error) {
	var recs []entities.NotificationRecord
	query := `
		SELECT * FROM notification_history
		WHERE wallet = $1
		ORDER BY sent_at DESC, id DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &recs, query, wallet, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent notifications: %w", err)
	}

	return recs, nil
}
