package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/metrics"
)

var _ adapter.IFSCClient = (*IFSCCache)(nil)

// IFSCCache decorates an IFSCClient with a Redis read-through cache.
// Only successful lookups are stored; cache failures fall through to the wrapped client.
type IFSCCache struct {
	next   adapter.IFSCClient
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewIFSCCache(next adapter.IFSCClient, client RedisClient, ttl time.Duration, logger *zerolog.Logger) *IFSCCache {
	l := logger.With().Str("component", "IFSCCache").Logger()
	return &IFSCCache{next: next, client: client, ttl: ttl, log: &l}
}

func ifscKey(code string) string { return "ifsc:" + code }

func (c *IFSCCache) Fetch(ctx context.Context, ifsc string) (*model.IFSCDetails, error) {
	key := ifscKey(ifsc)

	raw, err := c.client.Get(ctx, key)
	switch {
	case err == nil:
		var d model.IFSCDetails
		if uerr := json.Unmarshal([]byte(raw), &d); uerr == nil {
			metrics.IncCacheRequest("ifsc", "hit")
			return &d, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding corrupt cache entry")
		_ = c.client.Del(ctx, key)
	case !errors.Is(err, ErrCacheMiss):
		c.log.Warn().Err(err).Msg("ifsc cache read failed")
	}
	metrics.IncCacheRequest("ifsc", "miss")

	d, err := c.next.Fetch(ctx, ifsc)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(d); merr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl); serr != nil {
			c.log.Warn().Err(serr).Msg("ifsc cache write failed")
		}
	}
	return d, nil
}
