package repositories

import (
	"context"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// NotificationRepository defines the interface for the dispatch audit log
type NotificationRepository interface {
	// Append stores a new notification record
	Append(ctx context.Context, rec *entities.NotificationRecord) error

	// GetRecent retrieves the most recent records for a wallet, newest first
	GetRecent(ctx context.Context, wallet string, limit int) ([]entities.NotificationRecord, error)
}
