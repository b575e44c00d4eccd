package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single price request.
const DefaultTimeout = 10 * time.Second

// Oracle fetches the current SOL/USD price from CoinGecko and remembers the
// last successful value so callers can degrade gracefully when the source is
// down.
type Oracle struct {
	url    string
	client *http.Client
	logger *zap.Logger

	mu        sync.Mutex
	lastKnown float64
}

// NewOracle creates a new price oracle. The fallback seeds the last-known
// value so a cold start with an unreachable price source still produces
// sensible conversions.
func NewOracle(url string, fallbackUSD float64, timeout time.Duration, logger *zap.Logger) *Oracle {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Oracle{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		lastKnown: fallbackUSD,
	}
}

type priceResponse struct {
	Solana struct {
		USD float64 `json:"usd"`
	} `json:"solana"`
}

// Price fetches the current SOL/USD price. On success the value also becomes
// the new last-known price.
func (o *Oracle) Price(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}

	if payload.Solana.USD <= 0 {
		return 0, fmt.Errorf("price source returned no price")
	}

	o.mu.Lock()
	o.lastKnown = payload.Solana.USD
	o.mu.Unlock()

	return payload.Solana.USD, nil
}

// LastKnown returns the most recent successfully fetched price, or the
// configured fallback when no fetch has succeeded yet.
func (o *Oracle) LastKnown() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastKnown
}
