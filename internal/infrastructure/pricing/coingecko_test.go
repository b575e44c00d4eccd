package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestOracle_Price(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"solana": {"usd": 187.42}}`))
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, 200, time.Second, zap.NewNop())

	price, err := oracle.Price(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 187.42 {
		t.Errorf("expected 187.42, got %f", price)
	}

	// Success updates the last-known value
	if got := oracle.LastKnown(); got != 187.42 {
		t.Errorf("expected last known 187.42, got %f", got)
	}
}

func TestOracle_FallbackSeedsLastKnown(t *testing.T) {
	oracle := NewOracle("http://127.0.0.1:0", 200, time.Second, zap.NewNop())

	if got := oracle.LastKnown(); got != 200 {
		t.Errorf("expected fallback 200 before any fetch, got %f", got)
	}
}

func TestOracle_FailureKeepsLastKnown(t *testing.T) {
	var healthy bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"solana": {"usd": 150}}`))
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, 200, time.Second, zap.NewNop())

	healthy = true
	if _, err := oracle.Price(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	healthy = false
	if _, err := oracle.Price(context.Background()); err == nil {
		t.Fatal("expected error from unhealthy source")
	}

	if got := oracle.LastKnown(); got != 150 {
		t.Errorf("expected last known to survive failure, got %f", got)
	}
}

func TestOracle_RejectsNonPositivePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"solana": {"usd": 0}}`))
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, 200, time.Second, zap.NewNop())

	if _, err := oracle.Price(context.Background()); err == nil {
		t.Fatal("expected error for zero price")
	}
	if got := oracle.LastKnown(); got != 200 {
		t.Errorf("expected fallback preserved, got %f", got)
	}
}
