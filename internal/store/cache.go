package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
)

// Cache key prefixes
const (
	KeyList       = "hrc:list"
	KeyGeneration = "hrc:gen"
)

// DefaultTTL bounds how long a cached list survives without a write.
const DefaultTTL = 30 * time.Second

// Recorder receives cache hit, miss and invalidation counts per kind.
type Recorder interface {
	RecordCacheHit(ctx context.Context, kind string)
	RecordCacheMiss(ctx context.Context, kind string)
	RecordCacheInvalidation(ctx context.Context, kind string)
}

// Cache keeps list responses in a kv.Store. Every kind has a generation
// counter that is part of the key; bumping it orphans all cached lists of
// that kind, and the TTL reclaims them.
type Cache struct {
	kv      kv.Store
	ttl     time.Duration
	group   singleflight.Group
	logger  *zap.SugaredLogger
	metrics Recorder
}

func NewCache(store kv.Store, ttl time.Duration, logger *zap.SugaredLogger, metrics Recorder) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{kv: store, ttl: ttl, logger: logger, metrics: metrics}
}

// ListKey returns the cache key for one list query of kind at the current
// generation.
func (c *Cache) ListKey(ctx context.Context, kind string, q resource.ListQuery) (string, error) {
	gen, err := c.kv.IncrBy(ctx, generationKey(kind), 0)
	if err != nil {
		return "", fmt.Errorf("cache generation error: %w", err)
	}
	// Filters marshal with sorted keys, so equal queries hash equally.
	canonical, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("cache marshal error: %w", err)
	}
	hash := uuid.NewSHA1(uuid.NameSpaceOID, canonical)
	return fmt.Sprintf("%s:%s:g%s:%s", KeyList, kind, strconv.FormatInt(gen, 10), hash), nil
}

// List serves q from the cache or calls load and caches a successful
// answer. Concurrent misses for the same key share one load. Cache outages
// degrade to calling load directly.
func (c *Cache) List(ctx context.Context, kind string, q resource.ListQuery, load func(context.Context) (resource.Envelope[[]resource.Record], error)) (resource.Envelope[[]resource.Record], error) {
	key, err := c.ListKey(ctx, kind, q)
	if err != nil {
		c.logger.Warnw("List cache unavailable", "kind", kind, "error", err)
		return load(ctx)
	}

	if env, ok := c.lookup(ctx, kind, key); ok {
		return env, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		env, err := load(ctx)
		if err != nil {
			return env, err
		}
		if env.Success {
			c.store(ctx, key, env)
		}
		return env, nil
	})
	if err != nil {
		return resource.Envelope[[]resource.Record]{}, err
	}
	return v.(resource.Envelope[[]resource.Record]), nil
}

func (c *Cache) lookup(ctx context.Context, kind, key string) (resource.Envelope[[]resource.Record], bool) {
	var env resource.Envelope[[]resource.Record]

	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warnw("Cache get error", "key", key, "error", err)
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx, kind)
		}
		return env, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		c.logger.Warnw("Cache unmarshal error", "key", key, "error", err)
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx, kind)
		}
		return env, false
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, kind)
	}
	return env, true
}

func (c *Cache) store(ctx context.Context, key string, env resource.Envelope[[]resource.Record]) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Warnw("Cache marshal error", "key", key, "error", err)
		return
	}
	if err := c.kv.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warnw("Cache set error", "key", key, "error", err)
	}
}

// Invalidate drops every cached list of kind.
func (c *Cache) Invalidate(ctx context.Context, kind string) error {
	if _, err := c.kv.IncrBy(ctx, generationKey(kind), 1); err != nil {
		c.logger.Errorw("Cache invalidate error", "kind", kind, "error", err)
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordCacheInvalidation(ctx, kind)
	}
	return nil
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.kv.Close()
}

func generationKey(kind string) string {
	return KeyGeneration + ":" + kind
}
