package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Bags.fm upstream configuration
	Bags BagsConfig

	// SOL price source configuration
	Price PriceConfig

	// Token metadata source configuration
	Metadata MetadataConfig

	// Bag monitor configuration
	Monitor MonitorConfig

	// APNs push configuration
	APNS APNSConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"bagstats"`
	Password        string        `envconfig:"DB_PASSWORD" default:"bagstats"`
	Name            string        `envconfig:"DB_NAME" default:"bagstats"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"3002"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"5m"`
	EnableTestPush  bool          `envconfig:"API_ENABLE_TEST_PUSH" default:"false"`
}

// BagsConfig holds settings for the Bags.fm public API
type BagsConfig struct {
	BaseURL         string        `envconfig:"BAGS_API_URL" default:"https://public-api-v2.bags.fm/api/v1"`
	APIKey          string        `envconfig:"BAGS_API_KEY" default:""`
	RequestTimeout  time.Duration `envconfig:"BAGS_REQUEST_TIMEOUT" default:"15s"`
	ClaimStatsDelay time.Duration `envconfig:"BAGS_CLAIM_STATS_DELAY" default:"50ms"`
}

// PriceConfig holds settings for the SOL/USD price source
type PriceConfig struct {
	URL            string        `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"`
	RequestTimeout time.Duration `envconfig:"PRICE_REQUEST_TIMEOUT" default:"10s"`
	FallbackUSD    float64       `envconfig:"PRICE_FALLBACK_USD" default:"200"`
}

// MetadataConfig holds settings for the token metadata source
type MetadataConfig struct {
	BaseURL        string        `envconfig:"METADATA_API_URL" default:"https://api.jup.ag/tokens/v1"`
	RequestTimeout time.Duration `envconfig:"METADATA_REQUEST_TIMEOUT" default:"10s"`
	MaxMints       int           `envconfig:"METADATA_MAX_MINTS" default:"30"`
	WorkerCount    int           `envconfig:"METADATA_WORKER_COUNT" default:"4"`
}

// MonitorConfig holds bag monitor settings
type MonitorConfig struct {
	Interval        time.Duration `envconfig:"MONITOR_INTERVAL" default:"5m"`
	WalletDelay     time.Duration `envconfig:"MONITOR_WALLET_DELAY" default:"1s"`
	BaselineTimeout time.Duration `envconfig:"MONITOR_BASELINE_TIMEOUT" default:"30s"`
}

// APNSConfig holds Apple Push Notification service settings
type APNSConfig struct {
	KeyPath        string        `envconfig:"APNS_KEY_PATH" default:"certs/AuthKey.p8"`
	KeyID          string        `envconfig:"APNS_KEY_ID" default:""`
	TeamID         string        `envconfig:"APNS_TEAM_ID" default:""`
	BundleID       string        `envconfig:"APNS_BUNDLE_ID" default:"xyz.bagstats.app"`
	Development    bool          `envconfig:"APNS_DEVELOPMENT" default:"true"`
	RequestTimeout time.Duration `envconfig:"APNS_REQUEST_TIMEOUT" default:"10s"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
