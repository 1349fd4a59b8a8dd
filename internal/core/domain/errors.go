package domain

import "errors"

var (
	// ErrInvalidQuantity covers a malformed placement request: missing
	// customer name, an empty item list, or a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrProductNotFound means a product id does not resolve to a live
	// (non-soft-deleted) row.
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientInventory means the requested quantity exceeds the
	// stock observed under the row lock.
	ErrInsufficientInventory = errors.New("not enough inventory available")

	// ErrVersionConflict signals that a product row's version moved
	// between read and write. It never escapes the order service: it is
	// converted into a retry or ErrInventoryRetriesExhausted.
	ErrVersionConflict = errors.New("optimistic lock conflict")

	// ErrInventoryRetriesExhausted is returned once every placement
	// attempt ended in a version conflict.
	ErrInventoryRetriesExhausted = errors.New("failed to update product inventory after several attempts")

	// ErrOrderRetrievalFailed means the order created by the current
	// transaction could not be read back inside that same transaction.
	ErrOrderRetrievalFailed = errors.New("failed to retrieve the order details after creation")

	// ErrInvalidProduct covers a catalog-create request missing its
	// required descriptive fields.
	ErrInvalidProduct = errors.New("product name is required")

	ErrNegativeInventory = errors.New("inventory cannot be negative")
	ErrInventoryOverflow = errors.New("inventory value exceeds integer column limits")

	// ErrProductNotFoundAfterUpdate means the consistency re-read after
	// a direct inventory set came back empty.
	ErrProductNotFoundAfterUpdate = errors.New("product not found after update")
)
