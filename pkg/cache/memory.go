package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	counter   int64
	isCounter bool
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache implements Service in process. Used in tests and when Redis
// is disabled.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates an in-process cache with a background sweep for
// expired entries.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxEntries:      10000,
		CleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		maxEntries: cfg.MaxEntries,
		stop:       make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.janitor(cfg.CleanupInterval)
	}
	return c
}

func (c *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Close stops the janitor goroutine.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = &memoryEntry{data: data, expiresAt: deadline(expiration)}
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) || e.isCounter {
		return ErrCacheMiss
	}

	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(e.data)
		return nil
	}
	return json.Unmarshal(e.data, dest)
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok && !e.expired(now) {
			return true, nil
		}
	}
	return false, nil
}

func (c *MemoryCache) Increment(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		e = &memoryEntry{isCounter: true}
		c.entries[key] = e
	}
	e.counter++
	return e.counter, nil
}

func (c *MemoryCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	e.expiresAt = deadline(expiration)
	return true, nil
}

func (c *MemoryCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.expired(time.Now()) {
		return false, nil
	}
	c.entries[key] = &memoryEntry{data: []byte("locked"), expiresAt: deadline(ttl)}
	return true, nil
}

func (c *MemoryCache) Unlock(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// evictOneLocked drops the entry closest to expiry, or an arbitrary one
// when nothing carries a TTL.
func (c *MemoryCache) evictOneLocked() {
	var victim string
	var earliest time.Time
	for key, e := range c.entries {
		if victim == "" {
			victim = key
			earliest = e.expiresAt
			continue
		}
		if !e.expiresAt.IsZero() && (earliest.IsZero() || e.expiresAt.Before(earliest)) {
			victim = key
			earliest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

func deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
