package repository

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	if err := cache.Set(ctx, "short", "a", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.Set(ctx, "forever", "b", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := cache.Get(ctx, "short"); !ok || v != "a" {
		t.Errorf("expected cached value, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(ctx, "short"); ok {
		t.Errorf("expected entry to expire")
	}
	if v, ok := cache.Get(ctx, "forever"); !ok || v != "b" {
		t.Errorf("expected entry without ttl to survive, got %q %v", v, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("expected expired entry to be dropped, got %d entries", cache.Len())
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()

	if _, ok := cache.Get(context.Background(), "nothing"); ok {
		t.Errorf("expected a miss")
	}
}

func TestMemoryCache_SetSweepsUnreadExpiredKeys(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 10000 {
		cache.Set(ctx, fmt.Sprintf("sim:%d", i), "x", time.Second)
	}
	cache.Set(ctx, "kept", "y", 0)

	now = now.Add(time.Hour)
	cache.Set(ctx, "fresh", "z", time.Minute)

	if cache.Len() != 2 {
		t.Errorf("expected only live keys to remain, got %d entries", cache.Len())
	}
}

func TestMemoryCache_PeriodicSweep(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	cache.Set(ctx, "a", "1", time.Second)
	cache.Set(ctx, "b", "2", time.Hour)

	now = now.Add(time.Minute)
	cache.mu.Lock()
	cache.deleteExpiredLocked(cache.now())
	cache.mu.Unlock()

	if cache.Len() != 1 {
		t.Errorf("expected the expired key to be swept, got %d entries", cache.Len())
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	cache.Close()
	cache.Close()

	if err := cache.Set(context.Background(), "k", "v", 0); err != nil {
		t.Errorf("expected cache to stay usable after Close, got %v", err)
	}
}
