package testutil

import (
	"context"
	"sync"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/push"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mu   sync.RWMutex
	subs []entities.Subscription

	// Function hooks for custom behavior
	UpsertFunc          func(ctx context.Context, sub *entities.Subscription) error
	DeleteFunc          func(ctx context.Context, deviceToken, wallet string) error
	ListByDeviceFunc    func(ctx context.Context, deviceToken string) ([]entities.Subscription, error)
	ListByWalletFunc    func(ctx context.Context, wallet string) ([]entities.Subscription, error)
	DistinctWalletsFunc func(ctx context.Context) ([]string, error)

	// Call tracking
	Calls []MockCall
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		subs:  make([]entities.Subscription, 0),
		Calls: make([]MockCall, 0),
	}
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, sub *entities.Subscription) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{sub.DeviceToken, sub.Wallet}})
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, sub)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].DeviceToken == sub.DeviceToken && m.subs[i].Wallet == sub.Wallet {
			m.subs[i].Platform = sub.Platform
			return nil
		}
	}
	sub.ID = int64(len(m.subs) + 1)
	m.subs = append(m.subs, *sub)
	return nil
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, deviceToken, wallet string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Delete", Args: []interface{}{deviceToken, wallet}})
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, deviceToken, wallet)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub.DeviceToken == deviceToken && sub.Wallet == wallet {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *MockSubscriptionRepository) ListByDevice(ctx context.Context, deviceToken string) ([]entities.Subscription, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListByDevice", Args: []interface{}{deviceToken}})
	m.mu.Unlock()

	if m.ListByDeviceFunc != nil {
		return m.ListByDeviceFunc(ctx, deviceToken)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Subscription, 0)
	for _, sub := range m.subs {
		if sub.DeviceToken == deviceToken {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (m *MockSubscriptionRepository) ListByWallet(ctx context.Context, wallet string) ([]entities.Subscription, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListByWallet", Args: []interface{}{wallet}})
	m.mu.Unlock()

	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, wallet)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Subscription, 0)
	for _, sub := range m.subs {
		if sub.Wallet == wallet {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (m *MockSubscriptionRepository) DistinctWallets(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "DistinctWallets", Args: nil})
	m.mu.Unlock()

	if m.DistinctWalletsFunc != nil {
		return m.DistinctWalletsFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, sub := range m.subs {
		if !seen[sub.Wallet] {
			seen[sub.Wallet] = true
			result = append(result, sub.Wallet)
		}
	}
	return result, nil
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []entities.Snapshot

	AppendFunc    func(ctx context.Context, snap *entities.Snapshot) error
	GetLatestFunc func(ctx context.Context, wallet string) (*entities.Snapshot, error)
	GetRecentFunc func(ctx context.Context, wallet string, limit int) ([]entities.Snapshot, error)

	Calls []MockCall
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make([]entities.Snapshot, 0),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockSnapshotRepository) Append(ctx context.Context, snap *entities.Snapshot) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Append", Args: []interface{}{snap.Wallet, snap.TotalUnclaimedLamports}})
	m.mu.Unlock()

	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, snap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	snap.ID = int64(len(m.snapshots) + 1)
	m.snapshots = append(m.snapshots, *snap)
	return nil
}

func (m *MockSnapshotRepository) GetLatest(ctx context.Context, wallet string) (*entities.Snapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetLatest", Args: []interface{}{wallet}})
	m.mu.Unlock()

	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, wallet)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *entities.Snapshot
	for i := range m.snapshots {
		snap := m.snapshots[i]
		if snap.Wallet != wallet {
			continue
		}
		if latest == nil || snap.ID > latest.ID {
			latest = &snap
		}
	}
	return latest, nil
}

func (m *MockSnapshotRepository) GetRecent(ctx context.Context, wallet string, limit int) ([]entities.Snapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetRecent", Args: []interface{}{wallet, limit}})
	m.mu.Unlock()

	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, wallet, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Snapshot, 0)
	for i := len(m.snapshots) - 1; i >= 0 && len(result) < limit; i-- {
		if m.snapshots[i].Wallet == wallet {
			result = append(result, m.snapshots[i])
		}
	}
	return result, nil
}

// Snapshots returns a copy of all stored snapshots
func (m *MockSnapshotRepository) Snapshots() []entities.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Snapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mu      sync.RWMutex
	records []entities.NotificationRecord

	AppendFunc    func(ctx context.Context, rec *entities.NotificationRecord) error
	GetRecentFunc func(ctx context.Context, wallet string, limit int) ([]entities.NotificationRecord, error)

	Calls []MockCall
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		records: make([]entities.NotificationRecord, 0),
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockNotificationRepository) Append(ctx context.Context, rec *entities.NotificationRecord) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Append", Args: []interface{}{rec.Wallet, rec.Type}})
	m.mu.Unlock()

	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *MockNotificationRepository) GetRecent(ctx context.Context, wallet string, limit int) ([]entities.NotificationRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetRecent", Args: []interface{}{wallet, limit}})
	m.mu.Unlock()

	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, wallet, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.NotificationRecord, 0)
	for i := len(m.records) - 1; i >= 0 && len(result) < limit; i-- {
		if m.records[i].Wallet == wallet {
			result = append(result, m.records[i])
		}
	}
	return result, nil
}

// Records returns a copy of all stored notification records
func (m *MockNotificationRepository) Records() []entities.NotificationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.NotificationRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MockPositionsFetcher is a mock claimable-positions client
type MockPositionsFetcher struct {
	mu        sync.Mutex
	CallCount int

	ClaimablePositionsFunc func(ctx context.Context, wallet string) ([]entities.Position, error)

	// Positions returned when no hook is set, keyed by wallet
	Positions map[string][]entities.Position
}

func NewMockPositionsFetcher() *MockPositionsFetcher {
	return &MockPositionsFetcher{Positions: make(map[string][]entities.Position)}
}

func (m *MockPositionsFetcher) ClaimablePositions(ctx context.Context, wallet string) ([]entities.Position, error) {
	m.mu.Lock()
	m.CallCount++
	m.mu.Unlock()

	if m.ClaimablePositionsFunc != nil {
		return m.ClaimablePositionsFunc(ctx, wallet)
	}
	return m.Positions[wallet], nil
}

// Count returns the number of recorded calls
func (m *MockPositionsFetcher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// MockClaimStatsFetcher is a mock claim-stats client
type MockClaimStatsFetcher struct {
	mu        sync.Mutex
	CallCount int

	ClaimStatsFunc func(ctx context.Context, mint string) ([]entities.ClaimStat, error)

	// Stats returned when no hook is set, keyed by mint
	Stats map[string][]entities.ClaimStat
}

func NewMockClaimStatsFetcher() *MockClaimStatsFetcher {
	return &MockClaimStatsFetcher{Stats: make(map[string][]entities.ClaimStat)}
}

func (m *MockClaimStatsFetcher) ClaimStats(ctx context.Context, mint string) ([]entities.ClaimStat, error) {
	m.mu.Lock()
	m.CallCount++
	m.mu.Unlock()

	if m.ClaimStatsFunc != nil {
		return m.ClaimStatsFunc(ctx, mint)
	}
	return m.Stats[mint], nil
}

// MockMetadataFetcher is a mock token metadata client
type MockMetadataFetcher struct {
	mu        sync.Mutex
	CallCount int

	TokenMetadataFunc func(ctx context.Context, mint string) (*entities.TokenMetadata, error)

	// Metadata returned when no hook is set, keyed by mint; missing mints
	// yield (nil, nil) like an unknown token
	Metadata map[string]*entities.TokenMetadata
}

func NewMockMetadataFetcher() *MockMetadataFetcher {
	return &MockMetadataFetcher{Metadata: make(map[string]*entities.TokenMetadata)}
}

func (m *MockMetadataFetcher) TokenMetadata(ctx context.Context, mint string) (*entities.TokenMetadata, error) {
	m.mu.Lock()
	m.CallCount++
	m.mu.Unlock()

	if m.TokenMetadataFunc != nil {
		return m.TokenMetadataFunc(ctx, mint)
	}
	return m.Metadata[mint], nil
}

// MockPriceOracle is a mock SOL/USD price source
type MockPriceOracle struct {
	PriceFunc func(ctx context.Context) (float64, error)

	PriceUSD float64
	Fallback float64
}

func NewMockPriceOracle(priceUSD float64) *MockPriceOracle {
	return &MockPriceOracle{PriceUSD: priceUSD, Fallback: priceUSD}
}

func (m *MockPriceOracle) Price(ctx context.Context) (float64, error) {
	if m.PriceFunc != nil {
		return m.PriceFunc(ctx)
	}
	return m.PriceUSD, nil
}

func (m *MockPriceOracle) LastKnown() float64 {
	return m.Fallback
}

// SentNotification records one dispatch attempt made through MockDispatcher
type SentNotification struct {
	DeviceToken  string
	Notification push.Notification
}

// MockDispatcher is a mock push notification transport
type MockDispatcher struct {
	mu   sync.Mutex
	sent []SentNotification

	SendFunc func(ctx context.Context, deviceToken string, n push.Notification) push.DispatchResult
}

func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{sent: make([]SentNotification, 0)}
}

func (m *MockDispatcher) Send(ctx context.Context, deviceToken string, n push.Notification) push.DispatchResult {
	m.mu.Lock()
	m.sent = append(m.sent, SentNotification{DeviceToken: deviceToken, Notification: n})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, deviceToken, n)
	}
	return push.DispatchResult{Success: true}
}

// Sent returns a copy of all recorded dispatch attempts
func (m *MockDispatcher) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}
