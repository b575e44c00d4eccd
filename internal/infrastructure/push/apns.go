package push

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/config"
)

// APNs endpoints. Provider tokens must be rotated at least once an hour;
// tokenLifetime stays well under that cap.
const (
	productionHost  = "https://api.push.apple.com"
	developmentHost = "https://api.sandbox.push.apple.com"
	tokenLifetime   = 50 * time.Minute
)

// Notification is the payload handed to the push transport.
type Notification struct {
	Title string
	Body  string
	Data  map[string]interface{}
}

// DispatchResult reports the outcome of a single send attempt.
type DispatchResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// APNSClient delivers notifications over the APNs HTTP/2 API using
// provider-token (ES256) authentication.
type APNSClient struct {
	host   string
	topic  string
	keyID  string
	teamID string
	key    *ecdsa.PrivateKey
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	bearerToken string
	issuedAt    time.Time
}

// NewAPNSClient creates a new APNs client. When key ID or team ID are missing
// the client starts unconfigured: sends report failure instead of crashing.
func NewAPNSClient(cfg config.APNSConfig, logger *zap.Logger) *APNSClient {
	host := productionHost
	if cfg.Development {
		host = developmentHost
	}

	c := &APNSClient{
		host:   host,
		topic:  cfg.BundleID,
		keyID:  cfg.KeyID,
		teamID: cfg.TeamID,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}

	if cfg.KeyID == "" || cfg.TeamID == "" {
		logger.Warn("APNs not configured: missing APNS_KEY_ID or APNS_TEAM_ID")
		return c
	}

	pem, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		logger.Error("Failed to read APNs signing key", zap.String("path", cfg.KeyPath), zap.Error(err))
		return c
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(pem)
	if err != nil {
		logger.Error("Failed to parse APNs signing key", zap.Error(err))
		return c
	}

	c.key = key
	logger.Info("APNs provider initialized", zap.String("topic", cfg.BundleID))
	return c
}

// Configured reports whether the client holds a usable signing key
func (c *APNSClient) Configured() bool {
	return c.key != nil
}

// providerToken returns a signed bearer token, reusing the cached one until
// it nears Apple's rotation window.
func (c *APNSClient) providerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.bearerToken != "" && now.Sub(c.issuedAt) < tokenLifetime {
		return c.bearerToken, nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.teamID,
		"iat": now.Unix(),
	})
	token.Header["kid"] = c.keyID

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign provider token: %w", err)
	}

	c.bearerToken = signed
	c.issuedAt = now
	return signed, nil
}

type apnsErrorResponse struct {
	Reason string `json:"reason"`
}

// Send delivers one notification to one device token
func (c *APNSClient) Send(ctx context.Context, deviceToken string, n Notification) DispatchResult {
	if !c.Configured() {
		c.logger.Warn("APNs not configured, skipping notification")
		return DispatchResult{Success: false, Error: "apns not configured"}
	}

	bearer, err := c.providerToken()
	if err != nil {
		c.logger.Error("Failed to obtain APNs provider token", zap.Error(err))
		return DispatchResult{Success: false, Error: err.Error()}
	}

	payload := map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{
				"title": n.Title,
				"body":  n.Body,
			},
			"sound": "default",
			"badge": 1,
		},
	}
	for k, v := range n.Data {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DispatchResult{Success: false, Error: err.Error()}
	}

	reqURL := fmt.Sprintf("%s/3/device/%s", c.host, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return DispatchResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("authorization", "bearer "+bearer)
	req.Header.Set("apns-topic", c.topic)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("APNs request failed", zap.Error(err))
		return DispatchResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return DispatchResult{Success: true}
	}

	var apnsErr apnsErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apnsErr)
	reason := apnsErr.Reason
	if reason == "" {
		reason = fmt.Sprintf("apns returned status %d", resp.StatusCode)
	}

	c.logger.Error("APNs send failed",
		zap.Int("status", resp.StatusCode),
		zap.String("reason", reason),
	)
	return DispatchResult{Success: false, Error: reason}
}
