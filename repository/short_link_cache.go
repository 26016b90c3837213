package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	shortLinkCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_cache_hits_total",
		Help: "Short link lookups served from redis",
	})
	shortLinkCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_cache_misses_total",
		Help: "Short link lookups that went to the database",
	})
)

// CachedShortLinkLookup fronts a ShortLinkLookup with a redis cache-aside layer.
// Only found rows are cached. Any redis failure falls through to the database.
type CachedShortLinkLookup struct {
	next   ShortLinkLookup
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedShortLinkLookup wraps next. A nil client disables caching.
func NewCachedShortLinkLookup(next ShortLinkLookup, client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *CachedShortLinkLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedShortLinkLookup{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedShortLinkLookup) key(code string) string {
	return fmt.Sprintf("%sshortlink:%s", c.prefix, code)
}

// ByCode returns the cached row when present, otherwise reads and caches it.
func (c *CachedShortLinkLookup) ByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	if c.client == nil {
		return c.next.ByCode(ctx, code)
	}

	key := c.key(code)
	bs, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var row models.ShortLink
		if jerr := json.Unmarshal(bs, &row); jerr == nil {
			shortLinkCacheHits.Inc()
			return &row, nil
		}
		c.logger.Warn("discarding undecodable short link cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("short link cache read failed", zap.String("key", key), zap.Error(err))
	}

	shortLinkCacheMisses.Inc()
	row, err := c.next.ByCode(ctx, code)
	if err != nil || row == nil {
		return row, err
	}

	if payload, merr := json.Marshal(row); merr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.logger.Warn("short link cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return row, nil
}

// Invalidate drops the cached entry of code.
func (c *CachedShortLinkLookup) Invalidate(ctx context.Context, code string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate short link cache: %w", err)
	}
	return nil
}
