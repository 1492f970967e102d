package cache

import (
	"context"
	"encoding/json"
	"time"

	"product-catalog/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productKeyPrefix = "product:"

// ProductCache is a read-through cache for product-by-id lookups.
// Redis failures are logged and treated as cache misses so the store
// remains the source of truth.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductCache creates a product cache backed by the given Redis client.
func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached product for id, or (nil, false) on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Product cache read failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}

	product := &domain.Product{}
	if err := json.Unmarshal(payload, product); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("id", id), zap.Error(err))
		c.client.Del(ctx, productKeyPrefix+id)
		return nil, false
	}

	return product, true
}

// Set stores the product under its identifier with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, product *domain.Product) {
	if c == nil || c.client == nil || product.ID == "" {
		return
	}

	payload, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn("Failed to encode product for cache", zap.String("id", product.ID), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, productKeyPrefix+product.ID, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("Product cache write failed", zap.String("id", product.ID), zap.Error(err))
	}
}

// Invalidate drops the cached entry for id, if any.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil || id == "" {
		return
	}

	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		c.logger.Debug("Product cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
