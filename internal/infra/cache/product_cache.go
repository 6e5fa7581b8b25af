// Package cache keeps product detail in Redis in front of the catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix = "product:"

	// tombstone marks a just-invalidated entry. Set uses NX, so a read that
	// started before the write cannot put its stale copy back while the
	// tombstone lives.
	tombstone        = "invalidated"
	invalidationHold = 5 * time.Second
)

type ProductCache struct {
	rdb  redis.UniversalClient
	ttl  time.Duration
	hold time.Duration
}

var _ usecase.ProductCache = (*ProductCache)(nil)

func NewProductCache(rdb redis.UniversalClient, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl, hold: invalidationHold}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, fmt.Errorf("redis get: %w", err)
	}
	if string(raw) == tombstone {
		return model.Product{}, false, nil
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		// drop it so the next Set can fill the slot
		_ = c.rdb.Del(ctx, productKey(id)).Err()
		return model.Product{}, false, fmt.Errorf("decode cached product %d: %w", id, err)
	}
	return p, true, nil
}

// Set fills an empty slot only. It is a no-op while the key holds a live
// entry or a tombstone.
func (c *ProductCache) Set(ctx context.Context, p model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product %d: %w", p.ID, err)
	}
	if err := c.rdb.SetNX(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate replaces the entries with tombstones that expire after hold.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, productKey(id), tombstone, c.hold)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
