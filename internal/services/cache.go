package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Generic in-memory cache with type safety
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]*cacheItem[V]
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]*cacheItem[V]),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}

	go c.cleanup(5 * time.Minute)

	return c
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiration) {
		var zero V
		return zero, false
	}

	return item.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine
func (c *Cache[K, V]) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache[K, V]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}

const quoteKeyPrefix = "quote:"

// QuoteCache keeps quotes in memory and, when a Redis client is given, in Redis
// so several API instances share one quote budget.
type QuoteCache struct {
	memory *Cache[string, *models.Quote]
	redis  *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewQuoteCache builds the cache. rdb may be nil for memory only.
func NewQuoteCache(ttl time.Duration, rdb *redis.Client, log zerolog.Logger) *QuoteCache {
	return &QuoteCache{
		memory: NewCache[string, *models.Quote](ttl),
		redis:  rdb,
		ttl:    ttl,
		log:    log.With().Str("component", "quote_cache").Logger(),
	}
}

// Get retrieves a quote from memory, then Redis
func (s *QuoteCache) Get(ctx context.Context, symbol string) (*models.Quote, bool) {
	if q, found := s.memory.Get(symbol); found {
		return q, true
	}

	if s.redis == nil {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, quoteKeyPrefix+symbol).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("redis get failed")
		}
		return nil, false
	}

	var q models.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("can't unmarshal cached quote")
		return nil, false
	}

	s.memory.Set(symbol, &q)
	return &q, true
}

// Set stores a quote in memory and Redis
func (s *QuoteCache) Set(ctx context.Context, symbol string, q *models.Quote) error {
	s.memory.Set(symbol, q)

	if s.redis == nil {
		return nil
	}

	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, quoteKeyPrefix+symbol, raw, s.ttl).Err()
}

func (s *QuoteCache) Close() error {
	s.memory.Close()
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
