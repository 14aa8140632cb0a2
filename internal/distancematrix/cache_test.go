package distancematrix

import (
	"context"
	"errors"
	"testing"
	"time"

	"distancematrix/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingProvider struct {
	calls  int
	lookup Lookup
	err    error
}

func (p *countingProvider) Lookup(context.Context, string, string, time.Time) (Lookup, error) {
	p.calls++
	return p.lookup, p.err
}

func TestMemoryCacheExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	_ = cache.Set(ctx, "k", Lookup{DurationMinutes: 20, Found: true})

	if got, ok, _ := cache.Get(ctx, "k"); !ok || got.DurationMinutes != 20 {
		t.Fatalf("expected cached lookup, got %+v (ok=%v)", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestRedisCacheRoundTripAndTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, time.Hour)
	ctx := context.Background()
	key := CacheKey("A", "B", time.Unix(1714550400, 0))

	if _, ok, err := cache.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	want := Lookup{DurationMinutes: 25.5, DistanceKm: 12, Found: true}
	if err := cache.Set(ctx, key, want); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, ok, err := cache.Get(ctx, key)
	if err != nil || !ok || got != want {
		t.Fatalf("expected %+v, got %+v (ok=%v err=%v)", want, got, ok, err)
	}
	if ttl := srv.TTL(key); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
}

func TestCachedProviderStoresMisses(t *testing.T) {
	next := &countingProvider{lookup: Lookup{}}
	provider := NewCachedProvider(next, NewMemoryCache(time.Hour), logger.Discard())
	departure := time.Unix(1714550400, 0)

	for i := 0; i < 3; i++ {
		if _, err := provider.Lookup(context.Background(), "A", "B", departure); err != nil {
			t.Fatalf("Lookup returned error: %v", err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: errors.New("timeout")}
	provider := NewCachedProvider(next, NewMemoryCache(time.Hour), logger.Discard())

	for i := 0; i < 2; i++ {
		if _, err := provider.Lookup(context.Background(), "A", "B", time.Unix(0, 0)); err == nil {
			t.Fatal("expected upstream error to propagate")
		}
	}
	if next.calls != 2 {
		t.Fatalf("expected errors to bypass the cache, got %d calls", next.calls)
	}
}
