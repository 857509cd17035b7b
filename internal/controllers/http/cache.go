package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

const (
	catalogVersionKey = "catalog:version"
	catalogCacheTTL   = 60 * time.Second
)

// CacheClient is the subset of *redis.Client the catalog cache uses.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// catalogCache keeps serialized public catalog responses. Keys embed a
// version counter, so one INCR drops every cached entry at once.
type catalogCache struct {
	rdb   CacheClient
	ttl   time.Duration
	group singleflight.Group
}

func newCatalogCache(rdb CacheClient) *catalogCache {
	return &catalogCache{rdb: rdb, ttl: catalogCacheTTL}
}

func (c *catalogCache) version(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, catalogVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return v, err
}

// fetch returns the JSON for key, calling load on a miss. Redis failures
// degrade to an uncached load. A shared fill runs detached from the
// caller's cancellation so one aborted request does not fail its waiters.
func (c *catalogCache) fetch(ctx context.Context, key string, load func(ctx context.Context) (any, error)) ([]byte, error) {
	encode := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
	if c == nil || c.rdb == nil {
		return encode(ctx)
	}

	version, err := c.version(ctx)
	if err != nil {
		log.Printf("Catalog cache unavailable: %v", err)
		return encode(ctx)
	}
	cacheKey := fmt.Sprintf("catalog:v%s:%s", version, key)

	if b, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		return b, nil
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("Catalog cache read %s: %v", cacheKey, err)
	}

	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		fillCtx := context.WithoutCancel(ctx)
		data, err := encode(fillCtx)
		if err != nil {
			return nil, err
		}
		if err := c.rdb.Set(fillCtx, cacheKey, data, c.ttl).Err(); err != nil {
			log.Printf("Catalog cache write %s: %v", cacheKey, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *catalogCache) invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, catalogVersionKey).Err(); err != nil {
		log.Printf("Catalog cache invalidation failed: %v", err)
	}
}
