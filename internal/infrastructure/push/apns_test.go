package push

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/config"
)

func newTestClient(t *testing.T, host string) *APNSClient {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	return &APNSClient{
		host:   host,
		topic:  "xyz.bagstats.app",
		keyID:  "KEY123",
		teamID: "TEAM123",
		key:    key,
		client: &http.Client{Timeout: time.Second},
		logger: zap.NewNop(),
	}
}

func TestAPNSClient_Unconfigured(t *testing.T) {
	client := NewAPNSClient(config.APNSConfig{RequestTimeout: time.Second}, zap.NewNop())

	if client.Configured() {
		t.Fatal("expected unconfigured client")
	}

	result := client.Send(context.Background(), "device-1", Notification{Title: "Hi"})
	if result.Success {
		t.Error("expected failure from unconfigured client")
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
}

func TestAPNSClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/device/device-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apns-topic") != "xyz.bagstats.app" {
			t.Errorf("unexpected topic %q", r.Header.Get("apns-topic"))
		}
		if r.Header.Get("apns-push-type") != "alert" {
			t.Errorf("unexpected push type %q", r.Header.Get("apns-push-type"))
		}
		if r.Header.Get("authorization") == "" {
			t.Error("expected authorization header")
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		aps, ok := payload["aps"].(map[string]interface{})
		if !ok {
			t.Fatal("expected aps payload")
		}
		alert := aps["alert"].(map[string]interface{})
		if alert["title"] != "New Bag Received! 💰" {
			t.Errorf("unexpected title %v", alert["title"])
		}
		if payload["wallet"] != "wallet-1" {
			t.Errorf("expected custom data merged, got %v", payload["wallet"])
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.Send(context.Background(), "device-1", Notification{
		Title: "New Bag Received! 💰",
		Body:  "+0.5000 SOL (~$100.00) from Bags",
		Data:  map[string]interface{}{"wallet": "wallet-1"},
	})

	if !result.Success {
		t.Errorf("expected success, got error %q", result.Error)
	}
}

func TestAPNSClient_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`{"reason": "Unregistered"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.Send(context.Background(), "device-1", Notification{Title: "Hi"})
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "Unregistered" {
		t.Errorf("expected apns reason, got %q", result.Error)
	}
}

func TestAPNSClient_ProviderTokenCached(t *testing.T) {
	client := newTestClient(t, "https://example.invalid")

	first, err := client.providerToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := client.providerToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected cached token within the lifetime")
	}

	// Expired tokens are re-signed
	client.mu.Lock()
	client.issuedAt = time.Now().Add(-tokenLifetime - time.Minute)
	client.mu.Unlock()

	third, err := client.providerToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Error("expected fresh token after expiry")
	}
}
