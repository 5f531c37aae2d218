package youtube

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/lysyi3m/social-rider/app/cache"
)

// API is the part of Client the video pipeline consumes.
type API interface {
	Configured() bool
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Videos(ctx context.Context, ids []string) ([]Video, error)
}

var (
	_ API = (*Client)(nil)
	_ API = (*CachedClient)(nil)
)

// CachedClient stores search pages and detail lookups in the response cache.
// Cache failures are logged and never fail a request.
type CachedClient struct {
	api   API
	cache cache.Interface
	ttl   time.Duration
}

func NewCachedClient(api API, store cache.Interface, ttl time.Duration) *CachedClient {
	return &CachedClient{
		api:   api,
		cache: store,
		ttl:   ttl,
	}
}

func (c *CachedClient) Configured() bool {
	return c.api.Configured()
}

func (c *CachedClient) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	key := cache.GenerateKey("yt:search", params.Query, params.PageToken,
		strconv.Itoa(params.MaxResults), params.Type, params.VideoDuration)

	var cached SearchResult
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := c.api.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, result)
	return result, nil
}

func (c *CachedClient) Videos(ctx context.Context, ids []string) ([]Video, error) {
	key := cache.GenerateKey("yt:videos", ids...)

	var cached []Video
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	videos, err := c.api.Videos(ctx, ids)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, videos)
	return videos, nil
}

func (c *CachedClient) load(ctx context.Context, key string, out any) bool {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		slog.Warn("Discarding unreadable cache entry", "key", key, "error", err)
		if delErr := c.cache.Delete(ctx, key); delErr != nil {
			slog.Warn("Cache delete failed", "key", key, "error", delErr)
		}
		return false
	}

	slog.Debug("Cache hit", "key", key)
	return true
}

func (c *CachedClient) store(ctx context.Context, key string, value any) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}
}
