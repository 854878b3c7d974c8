package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
)

// DefaultOrderTTL bounds staleness for cached order snapshots.
const DefaultOrderTTL = 10 * time.Minute

// OrderCache is a read-through order.Repository decorator. Get serves from
// Redis when possible, collapsing concurrent misses for the same ID into a
// single repository load; writes go to the repository first and then refresh
// or invalidate the cached snapshot. Cache failures degrade to repository
// reads, never to caller-visible errors.
type OrderCache struct {
	inner  order.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger logging.Logger
}

// NewOrderCache wraps inner with a Redis cache. An empty prefix or zero TTL
// falls back to "intake:" and DefaultOrderTTL.
func NewOrderCache(inner order.Repository, client *redis.Client, prefix string, ttl time.Duration, logger logging.Logger) *OrderCache {
	if prefix == "" {
		prefix = "intake:"
	}
	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OrderCache{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("ordercache"),
	}
}

// Save writes through to the repository and refreshes the cached snapshot.
func (c *OrderCache) Save(ctx context.Context, o *order.Order) error {
	if err := c.inner.Save(ctx, o); err != nil {
		return err
	}
	c.store(ctx, o)
	return nil
}

// Get returns the cached snapshot when present, otherwise loads from the
// repository and populates the cache. Concurrent misses for the same ID
// share one repository call.
func (c *OrderCache) Get(ctx context.Context, id string) (*order.Order, error) {
	if o, ok := c.lookup(ctx, id); ok {
		return o, nil
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		o, err := c.inner.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		c.store(ctx, o)
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*order.Order), nil
}

// List always reads from the repository; the listing is not cached.
func (c *OrderCache) List(ctx context.Context) ([]*order.Order, error) {
	return c.inner.List(ctx)
}

// UpdateStatus writes through and refreshes the cached snapshot.
func (c *OrderCache) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	o, err := c.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.store(ctx, o)
	return o, nil
}

func (c *OrderCache) key(id string) string {
	return c.prefix + "order:" + id
}

func (c *OrderCache) lookup(ctx context.Context, id string) (*order.Order, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", logging.String("order_id", id), logging.Err(err))
		}
		return nil, false
	}
	var o order.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		c.logger.Warn("cache entry corrupt", logging.String("order_id", id), logging.Err(err))
		c.invalidate(ctx, id)
		return nil, false
	}
	return &o, true
}

func (c *OrderCache) store(ctx context.Context, o *order.Order) {
	raw, err := json.Marshal(o)
	if err != nil {
		c.logger.Warn("cache marshal failed", logging.String("order_id", o.ID), logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, c.key(o.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", logging.String("order_id", o.ID), logging.Err(err))
	}
}

func (c *OrderCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", logging.String("order_id", id), logging.Err(err))
	}
}
