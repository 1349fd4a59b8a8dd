package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/fastenworks/partstore/internal/core/domain"
)

const (
	productKeyPrefix = "product:"
	productListKey   = "products:all"
)

// RedisCache caches catalog reads. Stock truth stays in MySQL; cached
// entries only ever serve catalog lookups and expire on a short TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func productKey(productID int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, productID)
}

func (c *RedisCache) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	val, err := c.client.Get(ctx, productKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "cache get product")
	}

	var p domain.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, errors.Wrap(err, "decode cached product")
	}
	return &p, nil
}

func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return errors.Wrap(err, "encode product")
	}
	return c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

func (c *RedisCache) DeleteProduct(ctx context.Context, productID int64) error {
	return c.client.Del(ctx, productKey(productID)).Err()
}

func (c *RedisCache) GetProductList(ctx context.Context) ([]domain.Product, error) {
	val, err := c.client.Get(ctx, productListKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "cache get product list")
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, errors.Wrap(err, "decode cached product list")
	}
	return products, nil
}

func (c *RedisCache) SetProductList(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return errors.Wrap(err, "encode product list")
	}
	return c.client.Set(ctx, productListKey, data, c.ttl).Err()
}

func (c *RedisCache) DeleteProductList(ctx context.Context) error {
	return c.client.Del(ctx, productListKey).Err()
}
