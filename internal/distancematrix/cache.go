package distancematrix

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"distancematrix/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Cache stores lookups keyed by origin, destination and departure.
type Cache interface {
	Get(ctx context.Context, key string) (Lookup, bool, error)
	Set(ctx context.Context, key string, lookup Lookup) error
}

// CacheKey builds the key for one lookup.
func CacheKey(origin, destination string, departure time.Time) string {
	return "dm:" + origin + "|" + destination + "|" + strconv.FormatInt(departure.Unix(), 10)
}

type memoryEntry struct {
	lookup    Lookup
	expiresAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Lookup, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || m.now().After(entry.expiresAt) {
		return Lookup{}, false, nil
	}
	return entry.lookup, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, lookup Lookup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{lookup: lookup, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Clear removes all entries.
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// RedisCache shares lookups between service instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache backed by client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Lookup, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{}, false, nil
	}
	if err != nil {
		return Lookup{}, false, err
	}

	var lookup Lookup
	if err := json.Unmarshal(raw, &lookup); err != nil {
		return Lookup{}, false, err
	}
	return lookup, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, lookup Lookup) error {
	raw, err := json.Marshal(lookup)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, r.ttl).Err()
}

// CachedProvider answers from the cache first and stores every upstream
// answer, including "no route" ones.
type CachedProvider struct {
	next  Provider
	cache Cache
	log   *logger.Logger
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache Cache, log *logger.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, log: log}
}

func (p *CachedProvider) Lookup(ctx context.Context, origin, destination string, departure time.Time) (Lookup, error) {
	key := CacheKey(origin, destination, departure)

	lookup, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("distance cache read failed", "error", err)
	} else if ok {
		return lookup, nil
	}

	lookup, err = p.next.Lookup(ctx, origin, destination, departure)
	if err != nil {
		return Lookup{}, err
	}

	if err := p.cache.Set(ctx, key, lookup); err != nil {
		p.log.Warn("distance cache write failed", "error", err)
	}
	return lookup, nil
}

var (
	_ Cache    = (*MemoryCache)(nil)
	_ Cache    = (*RedisCache)(nil)
	_ Provider = (*CachedProvider)(nil)
)
