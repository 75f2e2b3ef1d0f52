package core

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCatalogCache(client, ttl), mr
}

func TestCatalogCacheMovieList(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := cache.GetMovieList(ctx, 1, 20); ok {
		t.Fatal("expected miss on empty cache")
	}

	list := CachedMovieList{
		Items: []MovieRecord{{ID: 1, Title: "Inception", Description: "heist in dreams"}},
		Total: 1,
	}
	cache.SetMovieList(ctx, 1, 20, list)

	got, ok := cache.GetMovieList(ctx, 1, 20)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.Total != 1 || len(got.Items) != 1 || got.Items[0].Title != "Inception" {
		t.Fatalf("cached list = %+v", got)
	}

	// Other pages stay independent.
	if _, ok := cache.GetMovieList(ctx, 2, 20); ok {
		t.Fatal("expected miss for different page")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := cache.GetMovieList(ctx, 1, 20); ok {
		t.Fatal("expected miss after ttl expiry")
	}
}

func TestCatalogCacheMovie(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := cache.GetMovie(ctx, "Inception"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.SetMovie(ctx, "Inception", MovieRecord{ID: 1, Title: "Inception", Description: "heist in dreams"})
	got, ok := cache.GetMovie(ctx, "Inception")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.Title != "Inception" {
		t.Fatalf("cached movie = %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := cache.GetMovie(ctx, "Inception"); ok {
		t.Fatal("expected miss after ttl expiry")
	}
}

func TestCatalogCacheNilSafe(t *testing.T) {
	ctx := context.Background()
	var cache *CatalogCache
	if _, ok := cache.GetMovieList(ctx, 1, 20); ok {
		t.Fatal("nil cache reported a hit")
	}
	cache.SetMovieList(ctx, 1, 20, CachedMovieList{})
	if _, ok := cache.GetMovie(ctx, "Inception"); ok {
		t.Fatal("nil cache reported a hit")
	}
	cache.SetMovie(ctx, "Inception", MovieRecord{})
}
