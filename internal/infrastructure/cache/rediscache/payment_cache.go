// Package rediscache is a read-through cache for payment lookups. Entries
// expire after a TTL and are invalidated on cancellation; cache failures
// degrade to repository reads, never to request failures.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredislib "github.com/redis/go-redis/v9"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/observability"
)

const keyPrefix = "payment:cache:"

type PaymentCache struct {
	client goredislib.UniversalClient
	ttl    time.Duration
	log    observability.Logger
}

func New(client goredislib.UniversalClient, ttl time.Duration, logger observability.Logger) *PaymentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &PaymentCache{
		client: client,
		ttl:    ttl,
		log:    logger.With(observability.F("component", "payment_cache")),
	}
}

func (c *PaymentCache) Get(ctx context.Context, id int64) (*domain.Payment, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredislib.Nil) {
			c.log.Warn("cache_get_failed",
				observability.F("payment_id", id),
				observability.F("error", err.Error()),
			)
		}
		return nil, false
	}

	var p domain.Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn("cache_decode_failed", observability.F("payment_id", id))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &p, true
}

func (c *PaymentCache) Set(ctx context.Context, p *domain.Payment) {
	if p == nil || p.ID == 0 {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("cache_encode_failed", observability.F("payment_id", p.ID))
		return
	}
	if err := c.client.Set(ctx, cacheKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache_set_failed",
			observability.F("payment_id", p.ID),
			observability.F("error", err.Error()),
		)
	}
}

func (c *PaymentCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.log.Warn("cache_invalidate_failed",
			observability.F("payment_id", id),
			observability.F("error", err.Error()),
		)
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}
