package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// DefaultTimeout bounds a single metadata request.
const DefaultTimeout = 10 * time.Second

// Client fetches token display metadata from the Jupiter token list API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Jupiter metadata client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type tokenPayload struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	LogoURI string `json:"logoURI"`
}

// TokenMetadata fetches metadata for a token mint.
// Returns (nil, nil) when the mint is unknown to the source.
func (c *Client) TokenMetadata(ctx context.Context, mint string) (*entities.TokenMetadata, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata source returned status %d", resp.StatusCode)
	}

	var payload tokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}

	return &entities.TokenMetadata{
		Name:    payload.Name,
		Symbol:  payload.Symbol,
		LogoURI: payload.LogoURI,
	}, nil
}
