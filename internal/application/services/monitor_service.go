package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Pavelevich/bagstats-backend/internal/config"
	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
	"github.com/Pavelevich/bagstats-backend/internal/infrastructure/push"
)

// Dispatcher delivers one notification to one device token.
// It is invoked at most once per (subscription, event) per pass.
type Dispatcher interface {
	Send(ctx context.Context, deviceToken string, n push.Notification) push.DispatchResult
}

// MonitorService periodically re-evaluates all subscribed wallets, detects
// positive unclaimed-fee deltas against the last snapshot, and fans out
// notifications
type MonitorService struct {
	positions     PositionsFetcher
	oracle        PriceOracle
	subs          repositories.SubscriptionRepository
	snapshots     repositories.SnapshotRepository
	notifications repositories.NotificationRepository
	dispatcher    Dispatcher
	cfg           config.MonitorConfig
	logger        *zap.Logger
	metrics       *MonitorMetrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// MonitorMetrics tracks monitor activity
type MonitorMetrics struct {
	mu                  sync.RWMutex
	PassesRun           int64
	WalletsChecked      int64
	CheckErrors         int64
	EventsDetected      int64
	NotificationsSent   int64
	NotificationsFailed int64
	LastPassTime        time.Time
	LastPassDurationMs  int64
}

// NewMonitorService creates a new bag monitor
func NewMonitorService(
	positions PositionsFetcher,
	oracle PriceOracle,
	subs repositories.SubscriptionRepository,
	snapshots repositories.SnapshotRepository,
	notifications repositories.NotificationRepository,
	dispatcher Dispatcher,
	cfg config.MonitorConfig,
	logger *zap.Logger,
) *MonitorService {
	if cfg.WalletDelay <= 0 {
		cfg.WalletDelay = time.Second
	}

	return &MonitorService{
		positions:     positions,
		oracle:        oracle,
		subs:          subs,
		snapshots:     snapshots,
		notifications: notifications,
		dispatcher:    dispatcher,
		cfg:           cfg,
		logger:        logger,
		metrics:       &MonitorMetrics{},
	}
}

// Start begins the monitoring loop: an immediate pass, then one per interval.
// Starting an already running monitor is a no-op.
func (m *MonitorService) Start(ctx context.Context, interval time.Duration) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.logger.Info("Bag monitor already running")
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("Starting bag monitor", zap.Duration("interval", interval))

	m.wg.Add(1)
	go m.run(ctx, interval)
}

// Stop cancels the pending tick. An in-flight pass is allowed to complete;
// no further passes start.
func (m *MonitorService) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("Bag monitor stopped")
}

// Running reports whether the monitor loop is active
func (m *MonitorService) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetMetrics returns current monitor metrics
func (m *MonitorService) GetMetrics() MonitorMetrics {
	m.metrics.mu.RLock()
	defer m.metrics.mu.RUnlock()
	return MonitorMetrics{
		PassesRun:           m.metrics.PassesRun,
		WalletsChecked:      m.metrics.WalletsChecked,
		CheckErrors:         m.metrics.CheckErrors,
		EventsDetected:      m.metrics.EventsDetected,
		NotificationsSent:   m.metrics.NotificationsSent,
		NotificationsFailed: m.metrics.NotificationsFailed,
		LastPassTime:        m.metrics.LastPassTime,
		LastPassDurationMs:  m.metrics.LastPassDurationMs,
	}
}

func (m *MonitorService) run(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	stopCh := m.stopCh

	// Run immediately on start
	m.scanAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			m.scanAll(ctx)
		}
	}
}

// scanAll runs one monitor pass over every subscribed wallet
func (m *MonitorService) scanAll(ctx context.Context) {
	start := time.Now()

	// One price refresh per pass keeps deltas internally consistent
	price, err := m.oracle.Price(ctx)
	if err != nil {
		price = m.oracle.LastKnown()
		m.logger.Warn("Price refresh failed, using last known",
			zap.Float64("price", price),
			zap.Error(err),
		)
	}

	wallets, err := m.subs.DistinctWallets(ctx)
	if err != nil {
		m.logger.Error("Failed to list subscribed wallets", zap.Error(err))
		return
	}

	m.logger.Info("Checking wallets for new bags", zap.Int("wallets", len(wallets)))

	limiter := rate.NewLimiter(rate.Every(m.cfg.WalletDelay), 1)
	for _, wallet := range wallets {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		if err := m.checkWallet(ctx, wallet, price); err != nil {
			// Never fatal to the pass
			m.logger.Warn("Wallet check failed",
				zap.String("wallet", wallet),
				zap.Error(err),
			)
			m.metrics.mu.Lock()
			m.metrics.CheckErrors++
			m.metrics.mu.Unlock()
		}

		m.metrics.mu.Lock()
		m.metrics.WalletsChecked++
		m.metrics.mu.Unlock()
	}

	m.metrics.mu.Lock()
	m.metrics.PassesRun++
	m.metrics.LastPassTime = time.Now()
	m.metrics.LastPassDurationMs = time.Since(start).Milliseconds()
	m.metrics.mu.Unlock()
}

// CheckWallet runs the single-wallet monitor logic outside the scheduled
// pass, e.g. to seed the baseline snapshot right after a new subscription.
func (m *MonitorService) CheckWallet(ctx context.Context, wallet string) error {
	price, err := m.oracle.Price(ctx)
	if err != nil {
		price = m.oracle.LastKnown()
	}
	return m.checkWallet(ctx, wallet, price)
}

func (m *MonitorService) checkWallet(ctx context.Context, wallet string, price float64) error {
	positions, err := m.positions.ClaimablePositions(ctx, wallet)
	if err != nil {
		return &UpstreamError{Source: "positions", Err: err}
	}

	var current int64
	for _, pos := range positions {
		current += pos.ClaimableLamports
	}

	prev, err := m.snapshots.GetLatest(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to read latest snapshot: %w", err)
	}

	event := DetectEarnings(wallet, current, prev, price)

	// Persist unconditionally: baseline or updated
	snap := &entities.Snapshot{
		Wallet:                 wallet,
		TotalUnclaimedLamports: current,
		PositionsCount:         len(positions),
		TakenAt:                time.Now().UTC(),
	}
	if err := m.snapshots.Append(ctx, snap); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	if event == nil {
		return nil
	}

	m.logger.Info("New bag detected",
		zap.String("wallet", wallet),
		zap.Float64("sol", event.DeltaSOL),
		zap.Float64("usd", event.DeltaUSD),
	)
	m.metrics.mu.Lock()
	m.metrics.EventsDetected++
	m.metrics.mu.Unlock()

	m.notifySubscribers(ctx, event)
	return nil
}

// notifySubscribers fans out one notification per subscription for the
// wallet, recording every dispatch attempt in the audit log
func (m *MonitorService) notifySubscribers(ctx context.Context, event *entities.EarningsEvent) {
	subs, err := m.subs.ListByWallet(ctx, event.Wallet)
	if err != nil {
		m.logger.Error("Failed to list subscriptions for wallet",
			zap.String("wallet", event.Wallet),
			zap.Error(err),
		)
		return
	}

	for _, sub := range subs {
		result := m.dispatcher.Send(ctx, sub.DeviceToken, push.Notification{
			Title: "New Bag Received! 💰",
			Body:  fmt.Sprintf("+%.4f SOL (~$%.2f) from Bags", event.DeltaSOL, event.DeltaUSD),
			Data: map[string]interface{}{
				"type":      entities.NotificationTypeNewEarnings,
				"wallet":    event.Wallet,
				"amountSOL": event.DeltaSOL,
				"amountUSD": event.DeltaUSD,
			},
		})

		payload, _ := json.Marshal(map[string]interface{}{
			"device_token": sub.DeviceToken,
			"amount_sol":   event.DeltaSOL,
			"amount_usd":   event.DeltaUSD,
			"success":      result.Success,
		})
		rec := &entities.NotificationRecord{
			Wallet:  event.Wallet,
			Type:    entities.NotificationTypeNewEarnings,
			Payload: string(payload),
			SentAt:  time.Now().UTC(),
		}
		if err := m.notifications.Append(ctx, rec); err != nil {
			m.logger.Warn("Failed to record notification", zap.Error(err))
		}

		m.metrics.mu.Lock()
		if result.Success {
			m.metrics.NotificationsSent++
		} else {
			m.metrics.NotificationsFailed++
		}
		m.metrics.mu.Unlock()

		if !result.Success {
			m.logger.Warn("Notification dispatch failed",
				zap.String("wallet", event.Wallet),
				zap.String("error", result.Error),
			)
		}
	}
}
