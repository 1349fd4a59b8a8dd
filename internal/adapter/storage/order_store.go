package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/fastenworks/partstore/internal/core/domain"
)

func (t *txStore) CreateOrder(ctx context.Context, customerName string, status domain.OrderStatus) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (customer_name, status) VALUES (?, ?)`,
		customerName, status,
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert order")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read order id")
	}
	return id, nil
}

func (t *txStore) LinkProduct(ctx context.Context, orderID, productID int64, quantity int) error {
	// The join table keys on (order_id, product_id); repeating a product
	// within one order accumulates its quantity.
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_products (order_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + ?, updated_at = NOW()`,
		orderID, productID, quantity, quantity,
	)
	return errors.Wrapf(err, "link product %d to order %d", productID, orderID)
}

func (t *txStore) GetOrderWithLineItems(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	err := t.tx.GetContext(ctx, &order, `
		SELECT id, customer_name, status, version, created_at, updated_at, deleted_at
		FROM orders WHERE id = ? AND deleted_at IS NULL`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query order %d", orderID)
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT op.order_id, op.product_id, op.quantity, op.created_at, op.updated_at,
		       p.id, p.name, p.category, p.material, p.thread_size, p.finish,
		       p.quantity, p.price, p.inventory, p.version, p.created_at, p.updated_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ?
		ORDER BY op.product_id`, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "query line items for order %d", orderID)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(
			&item.OrderID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&item.Product.ID, &item.Product.Name, &item.Product.Category, &item.Product.Material,
			&item.Product.ThreadSize, &item.Product.Finish, &item.Product.Quantity,
			&item.Product.Price, &item.Product.Inventory, &item.Product.Version,
			&item.Product.CreatedAt, &item.Product.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan line item")
		}
		order.LineItems = append(order.LineItems, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate line items")
	}

	return &order, nil
}
