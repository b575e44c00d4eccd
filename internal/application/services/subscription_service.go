package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
)

// WalletChecker seeds a baseline snapshot for a freshly subscribed wallet
type WalletChecker interface {
	CheckWallet(ctx context.Context, wallet string) error
}

// WalletHistory bundles the latest snapshot with recent history for a wallet
type WalletHistory struct {
	Wallet  string              `json:"wallet"`
	Latest  *entities.Snapshot  `json:"latest"`
	History []entities.Snapshot `json:"history"`
}

// SubscriptionService manages device subscriptions to wallet notifications
type SubscriptionService struct {
	subs            repositories.SubscriptionRepository
	snapshots       repositories.SnapshotRepository
	notifications   repositories.NotificationRepository
	checker         WalletChecker
	baselineTimeout time.Duration
	logger          *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subs repositories.SubscriptionRepository,
	snapshots repositories.SnapshotRepository,
	notifications repositories.NotificationRepository,
	checker WalletChecker,
	baselineTimeout time.Duration,
	logger *zap.Logger,
) *SubscriptionService {
	if baselineTimeout <= 0 {
		baselineTimeout = 30 * time.Second
	}
	return &SubscriptionService{
		subs:            subs,
		snapshots:       snapshots,
		notifications:   notifications,
		checker:         checker,
		baselineTimeout: baselineTimeout,
		logger:          logger,
	}
}

// Subscribe registers a device token for notifications on a wallet.
// Re-subscribing the same (device, wallet) pair is idempotent.
func (s *SubscriptionService) Subscribe(ctx context.Context, deviceToken, wallet, platform string) (*entities.Subscription, error) {
	if deviceToken == "" {
		return nil, fmt.Errorf("device token is required")
	}
	if !entities.IsValidWallet(wallet) {
		return nil, ErrInvalidWallet
	}
	if platform == "" {
		platform = "ios"
	}

	sub := &entities.Subscription{
		DeviceToken: deviceToken,
		Wallet:      wallet,
		Platform:    platform,
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Device subscribed to wallet",
		zap.String("wallet", wallet),
		zap.String("platform", platform),
	)

	// Seed the baseline off the request path so the next monitor pass can
	// compute a delta instead of silently recording a first snapshot
	if s.checker != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.baselineTimeout)
			defer cancel()
			if err := s.checker.CheckWallet(ctx, wallet); err != nil {
				s.logger.Warn("Baseline check failed",
					zap.String("wallet", wallet),
					zap.Error(err),
				)
			}
		}()
	}

	return sub, nil
}

// Unsubscribe removes a (device, wallet) subscription.
// Returns repositories.ErrNotFound when no such subscription exists.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, deviceToken, wallet string) error {
	if err := s.subs.Delete(ctx, deviceToken, wallet); err != nil {
		return err
	}
	s.logger.Info("Device unsubscribed from wallet", zap.String("wallet", wallet))
	return nil
}

// ListByDevice returns all wallet subscriptions for a device token
func (s *SubscriptionService) ListByDevice(ctx context.Context, deviceToken string) ([]entities.Subscription, error) {
	return s.subs.ListByDevice(ctx, deviceToken)
}

// History returns the latest snapshot and recent snapshot history for a wallet
func (s *SubscriptionService) History(ctx context.Context, wallet string, limit int) (*WalletHistory, error) {
	if !entities.IsValidWallet(wallet) {
		return nil, ErrInvalidWallet
	}
	if limit <= 0 {
		limit = 10
	}

	latest, err := s.snapshots.GetLatest(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	}
	history, err := s.snapshots.GetRecent(ctx, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot history: %w", err)
	}

	return &WalletHistory{
		Wallet:  wallet,
		Latest:  latest,
		History: history,
	}, nil
}

// RecentNotifications returns the most recent notification audit records
// for a wallet
func (s *SubscriptionService) RecentNotifications(ctx context.Context, wallet string, limit int) ([]entities.NotificationRecord, error) {
	if !entities.IsValidWallet(wallet) {
		return nil, ErrInvalidWallet
	}
	if limit <= 0 {
		limit = 50
	}
	return s.notifications.GetRecent(ctx, wallet, limit)
}
