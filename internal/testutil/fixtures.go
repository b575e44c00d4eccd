package testutil

import (
	"time"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// Common test wallets and mints (valid base58)
const (
	CreatorWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	SecondWallet  = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	BonkMint      = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	USDCMint      = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	TestDeviceToken = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
)

// CreateTestPosition creates a test position with default values
func CreateTestPosition(opts ...PositionOption) entities.Position {
	p := entities.Position{
		Mint:              BonkMint,
		ClaimableLamports: 500_000_000,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

type PositionOption func(*entities.Position)

func WithMint(mint string) PositionOption {
	return func(p *entities.Position) {
		p.Mint = mint
	}
}

func WithClaimableLamports(lamports int64) PositionOption {
	return func(p *entities.Position) {
		p.ClaimableLamports = lamports
	}
}

// CreateTestSubscription creates a test subscription with default values
func CreateTestSubscription(opts ...SubscriptionOption) *entities.Subscription {
	s := &entities.Subscription{
		ID:          1,
		DeviceToken: TestDeviceToken,
		Wallet:      CreatorWallet,
		Platform:    "ios",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubscriptionOption func(*entities.Subscription)

func WithDeviceToken(token string) SubscriptionOption {
	return func(s *entities.Subscription) {
		s.DeviceToken = token
	}
}

func WithSubscriptionWallet(wallet string) SubscriptionOption {
	return func(s *entities.Subscription) {
		s.Wallet = wallet
	}
}

func WithPlatform(platform string) SubscriptionOption {
	return func(s *entities.Subscription) {
		s.Platform = platform
	}
}

// CreateTestSnapshot creates a test snapshot with default values
func CreateTestSnapshot(opts ...SnapshotOption) *entities.Snapshot {
	s := &entities.Snapshot{
		ID:                     1,
		Wallet:                 CreatorWallet,
		TotalUnclaimedLamports: 1_000_000_000,
		PositionsCount:         1,
		TakenAt:                time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SnapshotOption func(*entities.Snapshot)

func WithSnapshotWallet(wallet string) SnapshotOption {
	return func(s *entities.Snapshot) {
		s.Wallet = wallet
	}
}

func WithTotalUnclaimed(lamports int64) SnapshotOption {
	return func(s *entities.Snapshot) {
		s.TotalUnclaimedLamports = lamports
	}
}

func WithPositionsCount(count int) SnapshotOption {
	return func(s *entities.Snapshot) {
		s.PositionsCount = count
	}
}

func WithTakenAt(ts time.Time) SnapshotOption {
	return func(s *entities.Snapshot) {
		s.TakenAt = ts
	}
}
