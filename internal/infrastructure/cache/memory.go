package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Pavelevich/bagstats-backend/internal/domain/entities"
)

// MemoryStatsCache is an in-process TTL cache for wallet earnings views.
// Expired entries are evicted lazily on read, never proactively.
type MemoryStatsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	view     *entities.WalletEarningsView
	storedAt time.Time
}

// NewMemoryStatsCache creates a new in-memory stats cache with a fixed TTL
func NewMemoryStatsCache(ttl time.Duration) *MemoryStatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStatsCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached view for a wallet, or false when absent or expired
func (c *MemoryStatsCache) Get(_ context.Context, wallet string) (*entities.WalletEarningsView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[wallet]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, wallet)
		return nil, false
	}

	return entry.view, true
}

// Put stores a view for a wallet, resetting its TTL
func (c *MemoryStatsCache) Put(_ context.Context, wallet string, view *entities.WalletEarningsView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[wallet] = memoryEntry{view: view, storedAt: c.now()}
}
