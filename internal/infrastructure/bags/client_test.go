package bags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClient_ClaimablePositions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token-launch/claimable-positions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("wallet"); got != "wallet-1" {
			t.Errorf("unexpected wallet query %q", got)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"response": [
				{"baseMint": "mint-a", "totalClaimableLamportsUserShare": 500000000},
				{"baseMint": "mint-b", "totalClaimableLamportsUserShare": 0}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", zap.NewNop())

	positions, err := client.ClaimablePositions(context.Background(), "wallet-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].Mint != "mint-a" || positions[0].ClaimableLamports != 500000000 {
		t.Errorf("unexpected first position %+v", positions[0])
	}
	if positions[1].ClaimableLamports != 0 {
		t.Errorf("expected zero-value position preserved, got %+v", positions[1])
	}
}

func TestClient_ClaimStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token-launch/claim-stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("tokenMint"); got != "mint-a" {
			t.Errorf("unexpected mint query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// totalClaimed arrives both quoted and bare
		w.Write([]byte(`{
			"success": true,
			"response": [
				{"wallet": "wallet-1", "totalClaimed": "123456789"},
				{"wallet": "wallet-2", "totalClaimed": 1000},
				{"wallet": "wallet-3", "totalClaimed": "not-a-number"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zap.NewNop())

	stats, err := client.ClaimStats(context.Background(), "mint-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The unparseable row is skipped, not fatal
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if stats[0].Wallet != "wallet-1" || stats[0].TotalClaimed != 123456789 {
		t.Errorf("unexpected first stat %+v", stats[0])
	}
	if stats[1].TotalClaimed != 1000 {
		t.Errorf("unexpected second stat %+v", stats[1])
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "wallet not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zap.NewNop())

	_, err := client.ClaimablePositions(context.Background(), "wallet-1")
	if err == nil {
		t.Fatal("expected error for unsuccessful envelope")
	}
}

func TestClient_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zap.NewNop())

	_, err := client.ClaimStats(context.Background(), "mint-a")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
