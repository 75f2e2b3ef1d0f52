package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

const (
	movieListKeyFmt  = "catalog:movies:page:%d:per:%d"
	movieTitleKeyFmt = "catalog:movie:%s"
)

// CachedMovieList is the serialized shape stored for a catalog page.
type CachedMovieList struct {
	Items []MovieRecord `json:"items"`
	Total int           `json:"total"`
}

// CatalogCache keeps catalog reads in redis with a short TTL. The catalog is
// read-only from the API's perspective, so entries simply expire; there is no
// invalidation path.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// GetMovieList returns the cached page and whether it was present.
func (c *CatalogCache) GetMovieList(ctx context.Context, page, perPage int) (CachedMovieList, bool) {
	var out CachedMovieList
	if c == nil || c.client == nil {
		return out, false
	}
	raw, err := c.client.Get(ctx, fmt.Sprintf(movieListKeyFmt, page, perPage)).Bytes()
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return CachedMovieList{}, false
	}
	return out, true
}

// SetMovieList stores a catalog page. Failures are swallowed; the cache is
// best effort and the database remains the source of truth.
func (c *CatalogCache) SetMovieList(ctx context.Context, page, perPage int, list CachedMovieList) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	c.client.Set(ctx, fmt.Sprintf(movieListKeyFmt, page, perPage), raw, c.ttl)
}

// GetMovie returns the cached movie for a title and whether it was present.
func (c *CatalogCache) GetMovie(ctx context.Context, title string) (*MovieRecord, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, fmt.Sprintf(movieTitleKeyFmt, title)).Bytes()
	if err != nil {
		return nil, false
	}
	var m MovieRecord
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// SetMovie stores a movie under its title.
func (c *CatalogCache) SetMovie(ctx context.Context, title string, m MovieRecord) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.client.Set(ctx, fmt.Sprintf(movieTitleKeyFmt, title), raw, c.ttl)
}
