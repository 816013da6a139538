package scoring

import (
	"sync"
	"time"

	"github.com/jonathan/fast-scorecard/internal/types"
)

// Cache defaults.
const (
	DefaultCacheTTL        = 30 * time.Minute
	DefaultCacheMaxEntries = 128
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// CacheConfig configures a Cache. Zero values select the defaults.
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
	Clock      Clock
}

type cacheEntry struct {
	result   types.EvaluationResult
	cachedAt time.Time
}

// Cache holds recent evaluation results keyed by CacheKey.
//
// Eviction is by insertion order: overwriting a key refreshes its value and timestamp
// but keeps its place in the queue. Expired entries stay until evicted or overwritten.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	clock   Clock
	entries map[string]*cacheEntry
	order   []string
}

// NewCache creates an empty cache.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	return &Cache{
		ttl:     cfg.TTL,
		max:     cfg.MaxEntries,
		clock:   cfg.Clock,
		entries: make(map[string]*cacheEntry, cfg.MaxEntries+1),
	}
}

// CacheKey identifies an evaluation by model, title and text.
func CacheKey(model, title, text string) string {
	return model + "\n" + title + "\n" + text
}

// Get returns a copy of the fresh entry stored under key.
// The returned result has ProcessingTimeMs set to zero.
func (c *Cache) Get(key string) (types.EvaluationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().Sub(entry.cachedAt) >= c.ttl {
		return types.EvaluationResult{}, false
	}
	return entry.result.Clone(), true
}

// Put stores a copy of result under key, evicting the oldest inserted key when full.
func (c *Cache) Put(key string, result *types.EvaluationResult) {
	stored := result.Clone()
	stored.ProcessingTimeMs = 0

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{result: stored, cachedAt: c.clock.Now()}

	for len(c.entries) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of stored entries, including expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
