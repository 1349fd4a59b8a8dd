package storage

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/port"
)

// CachedProductStore decorates a ProductStore with read-through
// caching. Cache failures degrade to database reads; writes invalidate
// the affected keys. Order placement bypasses this decorator entirely,
// so cached inventory values are advisory and bounded by the TTL.
type CachedProductStore struct {
	store port.ProductStore
	cache port.ProductCache
	log   *logrus.Entry
}

func NewCachedProductStore(store port.ProductStore, cache port.ProductCache, log *logrus.Entry) *CachedProductStore {
	return &CachedProductStore{store: store, cache: cache, log: log}
}

func (c *CachedProductStore) GetByID(ctx context.Context, productID int64) (*domain.Product, error) {
	cached, err := c.cache.GetProduct(ctx, productID)
	if err != nil {
		c.log.WithError(err).Warn("product cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	product, err := c.store.GetByID(ctx, productID)
	if err != nil || product == nil {
		return product, err
	}

	if err := c.cache.SetProduct(ctx, product); err != nil {
		c.log.WithError(err).Warn("product cache write failed")
	}
	return product, nil
}

func (c *CachedProductStore) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	// Only the unfiltered listing is cached; filtered queries are too
	// sparse to be worth keying.
	unfiltered := filter == (domain.CatalogFilter{})
	if unfiltered {
		cached, err := c.cache.GetProductList(ctx)
		if err != nil {
			c.log.WithError(err).Warn("product list cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	products, err := c.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if unfiltered && len(products) > 0 {
		if err := c.cache.SetProductList(ctx, products); err != nil {
			c.log.WithError(err).Warn("product list cache write failed")
		}
	}
	return products, nil
}

func (c *CachedProductStore) Create(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	created, err := c.store.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	c.invalidateList(ctx)
	return created, nil
}

func (c *CachedProductStore) SetInventory(ctx context.Context, productID int64, inventory int) error {
	if err := c.store.SetInventory(ctx, productID, inventory); err != nil {
		return err
	}
	c.invalidateProduct(ctx, productID)
	return nil
}

func (c *CachedProductStore) SoftDelete(ctx context.Context, productID int64) error {
	if err := c.store.SoftDelete(ctx, productID); err != nil {
		return err
	}
	c.invalidateProduct(ctx, productID)
	return nil
}

func (c *CachedProductStore) invalidateProduct(ctx context.Context, productID int64) {
	if err := c.cache.DeleteProduct(ctx, productID); err != nil {
		c.log.WithError(err).Warn("product cache invalidation failed")
	}
	c.invalidateList(ctx)
}

func (c *CachedProductStore) invalidateList(ctx context.Context) {
	if err := c.cache.DeleteProductList(ctx); err != nil {
		c.log.WithError(err).Warn("product list cache invalidation failed")
	}
}
