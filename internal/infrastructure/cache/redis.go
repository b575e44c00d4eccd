package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Pavelevich/bagstats-backend/internal/config"
	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// RedisStatsCache caches wallet earnings views in Redis so multiple instances
// can share a single cache. Redis handles expiry via the key TTL.
type RedisStatsCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisStatsCache creates a new Redis-backed stats cache
func NewRedisStatsCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	return &RedisStatsCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

func statsKey(wallet string) string {
	return "wallet_stats:" + wallet
}

// Get returns the cached view for a wallet, or false when absent or expired
func (c *RedisStatsCache) Get(ctx context.Context, wallet string) (*entities.WalletEarningsView, bool) {
	val, err := c.client.Get(ctx, statsKey(wallet)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Failed to read stats cache", zap.Error(err))
		}
		return nil, false
	}

	var view entities.WalletEarningsView
	if err := json.Unmarshal([]byte(val), &view); err != nil {
		c.logger.Warn("Failed to unmarshal cached stats", zap.Error(err))
		return nil, false
	}

	return &view, true
}

// Put stores a view for a wallet with the configured TTL
func (c *RedisStatsCache) Put(ctx context.Context, wallet string, view *entities.WalletEarningsView) {
	data, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("Failed to marshal stats for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, statsKey(wallet), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write stats cache", zap.Error(err))
	}
}

// HealthCheck checks if Redis is reachable
func (c *RedisStatsCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
