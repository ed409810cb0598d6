// Package cache provides the process-wide response cache: a per-category
// TTL store for aggregate payloads and a durable per-(api,account) store
// with no automatic expiry. One instance is created at startup and injected
// into the services that need it.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

type entry struct {
	payload  interface{}
	storedAt time.Time
}

// Cache is safe for concurrent use. Reads and writes never fail; absence
// is the only miss signal.
type Cache struct {
	mu     sync.Mutex
	logger *common.Logger
	now    func() time.Time

	ttls       map[models.Category]time.Duration
	aggregates map[models.Category]entry
	api        map[string]entry
}

// Option configures the cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache with TTLs from config.
func New(cfg common.CacheConfig, opts ...Option) *Cache {
	c := &Cache{
		logger: common.NewSilentLogger(),
		now:    time.Now,
		ttls: map[models.Category]time.Duration{
			models.CategoryBalance:   cfg.GetBalanceTTL(),
			models.CategoryTrades:    cfg.GetTradesTTL(),
			models.CategoryPositions: cfg.GetPositionsTTL(),
		},
		aggregates: make(map[models.Category]entry),
		api:        make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured TTL for a category (zero if unknown).
func (c *Cache) TTL(category models.Category) time.Duration {
	return c.ttls[category]
}

// Get returns the cached aggregate payload for a category while the entry
// is within its TTL, or nil on a miss.
func (c *Cache) Get(category models.Category) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.aggregates[category]
	if !ok {
		c.logger.Debug().Str("category", string(category)).Msg("Cache miss")
		return nil
	}

	age := c.now().Sub(e.storedAt)
	if age > c.ttls[category] {
		c.logger.Debug().
			Str("category", string(category)).
			Dur("age", age).
			Dur("ttl", c.ttls[category]).
			Msg("Cache expired")
		return nil
	}

	c.logger.Debug().Str("category", string(category)).Dur("age", age).Msg("Cache hit")
	return e.payload
}

// Set stores an aggregate payload, unconditionally overwriting.
func (c *Cache) Set(category models.Category, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggregates[category] = entry{payload: payload, storedAt: c.now()}
}

// Age returns how long ago the category entry was stored. The second
// return is false when nothing is cached.
func (c *Cache) Age(category models.Category) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.aggregates[category]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.storedAt), true
}

// IsValid reports whether a category entry exists and is within its TTL.
func (c *Cache) IsValid(category models.Category) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.aggregates[category]
	if !ok {
		return false
	}
	return c.now().Sub(e.storedAt) <= c.ttls[category]
}

// Clear removes one aggregate entry.
func (c *Cache) Clear(category models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.aggregates, category)
}

// ClearAll removes every entry in both stores.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggregates = make(map[models.Category]entry)
	c.api = make(map[string]entry)
}

func apiKey(apiName, uid string) string {
	return fmt.Sprintf("%s:%s", apiName, uid)
}

// GetAPI returns the durable per-account payload for an API, or nil.
// Durable entries never expire; once present they are trusted until
// explicitly cleared or the process restarts.
func (c *Cache) GetAPI(apiName, uid string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.api[apiKey(apiName, uid)]
	if !ok {
		c.logger.Debug().Str("key", apiKey(apiName, uid)).Msg("API cache miss")
		return nil
	}
	c.logger.Debug().
		Str("key", apiKey(apiName, uid)).
		Dur("age", c.now().Sub(e.storedAt)).
		Msg("API cache hit")
	return e.payload
}

// SetAPI stores a durable per-account payload, unconditionally overwriting.
func (c *Cache) SetAPI(apiName, uid string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.api[apiKey(apiName, uid)] = entry{payload: payload, storedAt: c.now()}
}

// ClearAPI removes one durable entry.
func (c *Cache) ClearAPI(apiName, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.api, apiKey(apiName, uid))
}

// AllPresent reports whether every account in the list has a durable entry
// for the given API. An empty account list has nothing cached.
func (c *Cache) AllPresent(apiName string, accounts []models.Account) bool {
	if len(accounts) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, acct := range accounts {
		if acct.UID == "" {
			return false
		}
		if _, ok := c.api[apiKey(apiName, acct.UID)]; !ok {
			return false
		}
	}
	return true
}
