package port

import (
	"context"

	"github.com/fastenworks/partstore/internal/core/domain"
)

// Store runs a function inside a serializable transaction. The
// transaction commits when fn returns nil and rolls back in full when
// it returns an error; partial effects never survive.
type Store interface {
	RunSerializable(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// TxStore is the transaction-scoped view of storage handed to the
// order placement flow.
type TxStore interface {
	ProductTxStore
	OrderTxStore
}

type ProductTxStore interface {
	// FetchForUpdate reads a live product row and acquires a row-level
	// write lock held until the transaction ends. Returns
	// domain.ErrProductNotFound when the row is absent or soft-deleted.
	FetchForUpdate(ctx context.Context, productID int64) (*domain.Product, error)

	// DecrementInventory subtracts amount from the product's inventory
	// and bumps its version by one, but only while the row's version
	// still equals expectedVersion. Returns domain.ErrVersionConflict
	// on a stale version and domain.ErrProductNotFound when the row is
	// gone.
	DecrementInventory(ctx context.Context, productID int64, amount, expectedVersion int) error
}

type OrderTxStore interface {
	// CreateOrder inserts the order row and returns its id.
	CreateOrder(ctx context.Context, customerName string, status domain.OrderStatus) (int64, error)

	// LinkProduct inserts the order/product join row with the requested
	// quantity. Linking the same product twice accumulates quantity.
	LinkProduct(ctx context.Context, orderID, productID int64, quantity int) error

	// GetOrderWithLineItems hydrates the order with its line items and
	// product details. Returns (nil, nil) when the order is missing.
	GetOrderWithLineItems(ctx context.Context, orderID int64) (*domain.Order, error)
}

// ProductStore covers catalog and inventory access outside of the
// order placement transaction.
type ProductStore interface {
	// GetByID returns a live product, or (nil, nil) when absent.
	GetByID(ctx context.Context, productID int64) (*domain.Product, error)

	// List returns live products matching the filter.
	List(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error)

	// Create inserts a catalog entry and returns the stored row.
	Create(ctx context.Context, product domain.NewProduct) (*domain.Product, error)

	// SetInventory unconditionally sets a live product's inventory and
	// bumps its version. Returns domain.ErrProductNotFound when the row
	// is absent or soft-deleted.
	SetInventory(ctx context.Context, productID int64, inventory int) error

	// SoftDelete marks a live product as deleted.
	SoftDelete(ctx context.Context, productID int64) error
}

// ProductCache is a read-through cache for catalog lookups. A miss is
// (nil, nil); cache failures are reported, never fatal.
type ProductCache interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, productID int64) error

	GetProductList(ctx context.Context) ([]domain.Product, error)
	SetProductList(ctx context.Context, products []domain.Product) error
	DeleteProductList(ctx context.Context) error
}

// OrderEventPublisher announces committed orders to downstream
// consumers (fulfillment, notification).
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}
