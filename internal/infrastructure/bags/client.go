package bags

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 15 * time.Second

// Client talks to the Bags.fm public API: claimable positions per wallet and
// claim statistics per token mint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Bags.fm API client
func NewClient(baseURL, apiKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the response wrapper every Bags.fm endpoint uses.
type envelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

type positionPayload struct {
	BaseMint                        string `json:"baseMint"`
	TotalClaimableLamportsUserShare int64  `json:"totalClaimableLamportsUserShare"`
}

type claimStatPayload struct {
	Wallet       string          `json:"wallet"`
	TotalClaimed json.RawMessage `json:"totalClaimed"`
}

// parseLamports reads a lamport amount that arrives either as a bare JSON
// number or quoted as a string for values beyond JavaScript's safe range
func parseLamports(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("empty amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("api returned error: %s", env.Error)
		}
		return fmt.Errorf("api returned error")
	}

	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}

	return nil
}

// ClaimablePositions fetches all claimable fee positions for a wallet
func (c *Client) ClaimablePositions(ctx context.Context, wallet string) ([]entities.Position, error) {
	query := url.Values{}
	query.Set("wallet", wallet)

	var payload []positionPayload
	if err := c.get(ctx, "/token-launch/claimable-positions", query, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch claimable positions: %w", err)
	}

	positions := make([]entities.Position, 0, len(payload))
	for _, p := range payload {
		positions = append(positions, entities.Position{
			Mint:              p.BaseMint,
			ClaimableLamports: p.TotalClaimableLamportsUserShare,
		})
	}

	return positions, nil
}

// ClaimStats fetches per-wallet claimed totals for a token mint
func (c *Client) ClaimStats(ctx context.Context, mint string) ([]entities.ClaimStat, error) {
	query := url.Values{}
	query.Set("tokenMint", mint)

	var payload []claimStatPayload
	if err := c.get(ctx, "/token-launch/claim-stats", query, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch claim stats: %w", err)
	}

	stats := make([]entities.ClaimStat, 0, len(payload))
	for _, s := range payload {
		claimed, err := parseLamports(s.TotalClaimed)
		if err != nil {
			c.logger.Warn("Skipping unparseable claim stat",
				zap.String("mint", mint),
				zap.String("wallet", s.Wallet),
				zap.String("totalClaimed", string(s.TotalClaimed)),
			)
			continue
		}
		stats = append(stats, entities.ClaimStat{
			Wallet:       s.Wallet,
			TotalClaimed: claimed,
		})
	}

	return stats, nil
}
