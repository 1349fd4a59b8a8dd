package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/port"
)

// InventoryService validates and applies inventory-level changes made
// outside the order flow: administrative corrections and feed
// reconciliation.
type InventoryService struct {
	products port.ProductStore
	log      *logrus.Entry
}

func NewInventoryService(products port.ProductStore, log *logrus.Entry) *InventoryService {
	return &InventoryService{products: products, log: log}
}

// SetInventory sets a product's orderable stock to newValue and returns
// the row re-read after the write.
func (s *InventoryService) SetInventory(ctx context.Context, productID int64, newValue int64) (*domain.Product, error) {
	if newValue < 0 {
		return nil, domain.ErrNegativeInventory
	}
	if newValue > domain.MaxInventory {
		return nil, domain.ErrInventoryOverflow
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		s.log.WithField("product_id", productID).Error("product not found")
		return nil, domain.ErrProductNotFound
	}

	if err := s.products.SetInventory(ctx, productID, int(newValue)); err != nil {
		return nil, err
	}

	// Re-read after writing to guard against a concurrent delete.
	updated, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.log.WithField("product_id", productID).Error("product not found after update")
		return nil, domain.ErrProductNotFoundAfterUpdate
	}
	return updated, nil
}

func (s *InventoryService) GetInventory(ctx context.Context, productID int64) (int, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		s.log.WithField("product_id", productID).Error("product not found")
		return 0, domain.ErrProductNotFound
	}
	return product.Inventory, nil
}
