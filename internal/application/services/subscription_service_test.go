package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/domain/repositories"
	"github.com/Pavelevich/bagstats-backend/internal/testutil"
)

// recordingChecker captures baseline checks triggered by new subscriptions
type recordingChecker struct {
	mu      sync.Mutex
	wallets []string
	done    chan struct{}
}

func newRecordingChecker() *recordingChecker {
	return &recordingChecker{done: make(chan struct{}, 8)}
}

func (c *recordingChecker) CheckWallet(ctx context.Context, wallet string) error {
	c.mu.Lock()
	c.wallets = append(c.wallets, wallet)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func setupSubscriptionServiceTest() (*SubscriptionService, *testutil.MockSubscriptionRepository, *recordingChecker) {
	subs := testutil.NewMockSubscriptionRepository()
	snapshots := testutil.NewMockSnapshotRepository()
	notifications := testutil.NewMockNotificationRepository()
	checker := newRecordingChecker()

	service := NewSubscriptionService(subs, snapshots, notifications, checker, time.Second, zap.NewNop())
	return service, subs, checker
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	service, subs, checker := setupSubscriptionServiceTest()
	ctx := context.Background()

	sub, err := service.Subscribe(ctx, testutil.TestDeviceToken, testutil.CreatorWallet, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.Platform != "ios" {
		t.Errorf("expected ios platform default, got %q", sub.Platform)
	}

	wallets, err := subs.DistinctWallets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wallets) != 1 || wallets[0] != testutil.CreatorWallet {
		t.Errorf("expected subscription stored, got %v", wallets)
	}

	// Subscribing kicks off a baseline check in the background
	select {
	case <-checker.done:
	case <-time.After(time.Second):
		t.Fatal("expected a baseline check")
	}
	checker.mu.Lock()
	defer checker.mu.Unlock()
	if len(checker.wallets) != 1 || checker.wallets[0] != testutil.CreatorWallet {
		t.Errorf("expected baseline check for wallet, got %v", checker.wallets)
	}
}

func TestSubscriptionService_Subscribe_InvalidWallet(t *testing.T) {
	service, _, _ := setupSubscriptionServiceTest()
	ctx := context.Background()

	cases := []struct {
		name   string
		wallet string
	}{
		{"empty", ""},
		{"too short", strings.Repeat("1", 31)},
		{"too long", strings.Repeat("1", 45)},
		{"bad characters", strings.Repeat("0", 40)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Subscribe(ctx, testutil.TestDeviceToken, tc.wallet, "ios")
			if !errors.Is(err, ErrInvalidWallet) {
				t.Errorf("expected ErrInvalidWallet, got %v", err)
			}
		})
	}
}

func TestSubscriptionService_Subscribe_MissingDeviceToken(t *testing.T) {
	service, _, _ := setupSubscriptionServiceTest()

	_, err := service.Subscribe(context.Background(), "", testutil.CreatorWallet, "ios")
	if err == nil {
		t.Fatal("expected error for missing device token")
	}
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	service, subs, _ := setupSubscriptionServiceTest()
	ctx := context.Background()

	_ = subs.Upsert(ctx, testutil.CreateTestSubscription())

	if err := service.Unsubscribe(ctx, testutil.TestDeviceToken, testutil.CreatorWallet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Removing it again reports not found
	err := service.Unsubscribe(ctx, testutil.TestDeviceToken, testutil.CreatorWallet)
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptionService_History(t *testing.T) {
	subs := testutil.NewMockSubscriptionRepository()
	snapshots := testutil.NewMockSnapshotRepository()
	notifications := testutil.NewMockNotificationRepository()
	service := NewSubscriptionService(subs, snapshots, notifications, nil, time.Second, zap.NewNop())
	ctx := context.Background()

	_ = snapshots.Append(ctx, testutil.CreateTestSnapshot(testutil.WithTotalUnclaimed(100)))
	_ = snapshots.Append(ctx, testutil.CreateTestSnapshot(testutil.WithTotalUnclaimed(200)))

	history, err := service.History(ctx, testutil.CreatorWallet, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if history.Latest == nil || history.Latest.TotalUnclaimedLamports != 200 {
		t.Errorf("expected latest snapshot with 200 lamports, got %+v", history.Latest)
	}
	if len(history.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(history.History))
	}
}

func TestSubscriptionService_History_InvalidWallet(t *testing.T) {
	service, _, _ := setupSubscriptionServiceTest()

	_, err := service.History(context.Background(), "not-a-wallet", 10)
	if !errors.Is(err, ErrInvalidWallet) {
		t.Errorf("expected ErrInvalidWallet, got %v", err)
	}
}
