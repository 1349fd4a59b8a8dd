package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/fastenworks/partstore/internal/core/domain"
)

const productColumns = `id, name, category, material, thread_size, finish, quantity, price, inventory, version, created_at, updated_at, deleted_at`

func (s *SQLStore) GetByID(ctx context.Context, productID int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `
		SELECT `+productColumns+`
		FROM products WHERE id = ? AND deleted_at IS NULL`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query product %d", productID)
	}
	return &p, nil
}

func (s *SQLStore) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL`
	var args []interface{}

	clauses := []struct {
		column, value string
	}{
		{"category", filter.Category},
		{"material", filter.Material},
		{"thread_size", filter.ThreadSize},
		{"finish", filter.Finish},
	}
	for _, clause := range clauses {
		if strings.TrimSpace(clause.value) == "" {
			continue
		}
		query += ` AND ` + clause.column + ` = ?`
		args = append(args, clause.value)
	}
	query += ` ORDER BY id`

	var products []domain.Product
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return products, nil
}

func (s *SQLStore) Create(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, category, material, thread_size, finish, quantity, price, inventory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Category, product.Material, product.ThreadSize,
		product.Finish, product.Quantity, product.Price, product.Inventory,
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert product")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "read product id")
	}

	created, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, domain.ErrProductNotFoundAfterUpdate
	}
	return created, nil
}

// SetInventory writes the inventory level unconditionally. The version
// still advances so concurrent placements observe the write.
func (s *SQLStore) SetInventory(ctx context.Context, productID int64, inventory int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET inventory = ?, version = version + 1, updated_at = NOW()
		WHERE id = ? AND deleted_at IS NULL`,
		inventory, productID,
	)
	if err != nil {
		return errors.Wrapf(err, "set inventory for product %d", productID)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (s *SQLStore) SoftDelete(ctx context.Context, productID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET deleted_at = NOW()
		WHERE id = ? AND deleted_at IS NULL`, productID)
	if err != nil {
		return errors.Wrapf(err, "soft delete product %d", productID)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// FetchForUpdate reads the product row under a row-level write lock so
// concurrent placements targeting the same product serialize here.
func (t *txStore) FetchForUpdate(ctx context.Context, productID int64) (*domain.Product, error) {
	var p domain.Product
	err := t.tx.GetContext(ctx, &p, `
		SELECT `+productColumns+`
		FROM products WHERE id = ? AND deleted_at IS NULL
		FOR UPDATE`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "lock product %d", productID)
	}
	return &p, nil
}

// DecrementInventory applies the conditional decrement. The row lock
// from FetchForUpdate already serializes writers; the version predicate
// stays as the authoritative conflict signal for the retry loop.
func (t *txStore) DecrementInventory(ctx context.Context, productID int64, amount, expectedVersion int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET inventory = inventory - ?, version = version + 1, updated_at = NOW()
		WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		amount, productID, expectedVersion,
	)
	if err != nil {
		return errors.Wrapf(err, "decrement inventory for product %d", productID)
	}

	rows, _ := res.RowsAffected()
	if rows > 0 {
		return nil
	}

	// No row matched: either the version moved or the row is gone.
	var live int
	if err := t.tx.GetContext(ctx, &live, `
		SELECT COUNT(*) FROM products WHERE id = ? AND deleted_at IS NULL`, productID); err != nil {
		return errors.Wrapf(err, "recheck product %d", productID)
	}
	if live == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrVersionConflict
}
