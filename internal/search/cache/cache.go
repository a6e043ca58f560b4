// Package cache provides the Redis-backed query-result cache. Identical
// queries within the TTL are answered from Redis, and concurrent duplicate
// queries are collapsed through singleflight so the engine computes each
// distinct query once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/meridianhealth/recordsearch/internal/search"
	"github.com/meridianhealth/recordsearch/pkg/config"
	pkgredis "github.com/meridianhealth/recordsearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "recordsearch:"

// QueryCache caches search responses keyed on the normalised request.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached response for req, if present.
func (c *QueryCache) Get(ctx context.Context, req search.Request) (*search.Response, bool) {
	key := buildKey(req)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp search.Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

// Set stores the response for req with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, req search.Request, resp *search.Response) {
	key := buildKey(req)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for req or computes and stores
// it. The second return value reports a cache hit. Concurrent calls for the
// same key share a single computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	req search.Request,
	computeFn func() *search.Response,
) (*search.Response, bool) {
	if resp, ok := c.Get(ctx, req); ok {
		return resp, true
	}
	key := buildKey(req)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, req); ok {
			return resp, nil
		}
		resp := computeFn()
		c.Set(ctx, req, resp)
		return resp, nil
	})
	return val.(*search.Response), false
}

// Invalidate drops every cached response. Called after any index mutation
// since a single document change can reorder arbitrary result sets.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey derives a stable cache key from the query text, result bound, and
// filters. Filters are serialised in sorted key order so equal filter maps
// always produce the same key.
func buildKey(req search.Request) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.TrimSpace(req.Query)))
	sb.WriteString(fmt.Sprintf("|top_k=%d", req.TopK))

	if len(req.Filters) > 0 {
		keys := make([]string, 0, len(req.Filters))
		for k := range req.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("|%s=%s", k, req.Filters[k]))
		}
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
