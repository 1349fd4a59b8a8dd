package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/port"
)

// CatalogService serves catalog queries and manual catalog creation.
type CatalogService struct {
	products port.ProductStore
	log      *logrus.Entry
}

func NewCatalogService(products port.ProductStore, log *logrus.Entry) *CatalogService {
	return &CatalogService{products: products, log: log}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, input domain.NewProduct) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrInvalidProduct
	}
	if input.Inventory < 0 {
		return nil, domain.ErrNegativeInventory
	}
	if input.Inventory > domain.MaxInventory {
		return nil, domain.ErrInventoryOverflow
	}

	created, err := s.products.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"product_id": created.ID,
		"name":       created.Name,
	}).Info("product created")
	return created, nil
}
