package inventory

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)

	ctx := context.Background()
	key := listCacheKey("shop-1")

	var out []Product
	hit, err := cache.GetJSON(ctx, key, &out)
	if err != nil || hit {
		t.Fatalf("cold read hit=%v err=%v", hit, err)
	}

	in := []Product{{ID: "p1", Name: "Rice 5kg", Quantity: 12}}
	if err := cache.SetJSON(ctx, key, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err = cache.GetJSON(ctx, key, &out)
	if err != nil || !hit {
		t.Fatalf("warm read hit=%v err=%v", hit, err)
	}
	if len(out) != 1 || out[0].Name != "Rice 5kg" {
		t.Fatalf("cached value = %+v", out)
	}

	cache.Invalidate(ctx, key)
	hit, _ = cache.GetJSON(ctx, key, &out)
	if hit {
		t.Fatal("expected invalidated key to miss")
	}
}

func TestCacheNilReceiverIsSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	if hit, err := cache.GetJSON(ctx, "k", nil); hit || err != nil {
		t.Fatalf("nil cache get hit=%v err=%v", hit, err)
	}
	if err := cache.SetJSON(ctx, "k", 1); err != nil {
		t.Fatalf("nil cache set: %v", err)
	}
	cache.Invalidate(ctx, "k")
}
