package tests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/adapter/storage"
	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/core/service"
)

type testEnv struct {
	db      *sqlx.DB
	store   *storage.SQLStore
	orders  *service.OrderService
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/partstore?parseTime=true"
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := storage.Migrate(db, "../db/migrations"); err != nil {
		db.Close()
		t.Fatalf("migrations failed: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	store := storage.NewSQLStore(db, entry)
	return &testEnv{
		db:      db,
		store:   store,
		orders:  service.NewOrderService(store, nil, entry),
		cleanup: func() { db.Close() },
	}
}

// createTestProduct inserts a product with the given inventory and
// registers cleanup of the product and any orders referencing it.
func createTestProduct(t *testing.T, env *testEnv, inventory int) *domain.Product {
	ctx := context.Background()
	product, err := env.store.Create(ctx, domain.NewProduct{
		Name:       "integration-bolt-" + uuid.NewString(),
		Category:   "bolts",
		Material:   "steel",
		ThreadSize: "M8",
		Finish:     "zinc",
		Quantity:   inventory,
		Price:      0.25,
		Inventory:  inventory,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	t.Cleanup(func() {
		env.db.ExecContext(ctx, `
			DELETE orders FROM orders
			JOIN order_products ON order_products.order_id = orders.id
			WHERE order_products.product_id = ?`, product.ID)
		env.db.ExecContext(ctx, `DELETE FROM order_products WHERE product_id = ?`, product.ID)
		env.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, product.ID)
	})
	return product
}

func currentInventory(t *testing.T, env *testEnv, productID int64) int {
	var inventory int
	err := env.db.QueryRowContext(context.Background(),
		`SELECT inventory FROM products WHERE id = ?`, productID).Scan(&inventory)
	if err != nil {
		t.Fatalf("read inventory: %v", err)
	}
	return inventory
}

func TestIntegration_PlaceOrderDecrementsInventory(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	product := createTestProduct(t, env, 100)

	order, err := env.orders.PlaceOrder(ctx, service.PlaceOrderInput{
		CustomerName: "integration-customer",
		Items: []service.LineItemInput{
			{ProductID: product.ID, Quantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if len(order.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(order.LineItems))
	}
	if order.LineItems[0].Quantity != 10 {
		t.Errorf("expected line item quantity 10, got %d", order.LineItems[0].Quantity)
	}
	if order.LineItems[0].Product.Name != product.Name {
		t.Errorf("line item product not hydrated, got %q", order.LineItems[0].Product.Name)
	}

	if got := currentInventory(t, env, product.ID); got != 90 {
		t.Errorf("expected inventory 90, got %d", got)
	}
	if order.LineItems[0].Product.Version != product.Version+1 {
		t.Errorf("expected version %d, got %d", product.Version+1, order.LineItems[0].Product.Version)
	}
}

func TestIntegration_InsufficientInventoryLeavesStateUntouched(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	product := createTestProduct(t, env, 5)

	_, err := env.orders.PlaceOrder(ctx, service.PlaceOrderInput{
		CustomerName: "integration-customer",
		Items: []service.LineItemInput{
			{ProductID: product.ID, Quantity: 10},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	if got := currentInventory(t, env, product.ID); got != 5 {
		t.Errorf("expected inventory unchanged at 5, got %d", got)
	}

	var orderCount int
	env.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_products WHERE product_id = ?`, product.ID).Scan(&orderCount)
	if orderCount != 0 {
		t.Errorf("expected no order rows after rollback, got %d", orderCount)
	}
}

func TestIntegration_MultiItemRollbackIsAtomic(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	plenty := createTestProduct(t, env, 100)
	scarce := createTestProduct(t, env, 1)

	_, err := env.orders.PlaceOrder(ctx, service.PlaceOrderInput{
		CustomerName: "integration-customer",
		Items: []service.LineItemInput{
			{ProductID: plenty.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// The first item's decrement must roll back with the failed attempt.
	if got := currentInventory(t, env, plenty.ID); got != 100 {
		t.Errorf("expected inventory 100 after rollback, got %d", got)
	}
	if got := currentInventory(t, env, scarce.ID); got != 1 {
		t.Errorf("expected inventory 1 after rollback, got %d", got)
	}
}

func TestIntegration_SoftDeletedProductNotOrderable(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	product := createTestProduct(t, env, 50)
	if err := env.store.SoftDelete(ctx, product.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, err := env.orders.PlaceOrder(ctx, service.PlaceOrderInput{
		CustomerName: "integration-customer",
		Items: []service.LineItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestIntegration_ConcurrentPlacementsConserveInventory(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	initialStock := 20
	totalRequests := 50
	product := createTestProduct(t, env, initialStock)

	var success, insufficient, exhausted, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.orders.PlaceOrder(ctx, service.PlaceOrderInput{
				CustomerName: fmt.Sprintf("concurrent-customer-%d", n),
				Items: []service.LineItemInput{
					{ProductID: product.ID, Quantity: 1},
				},
			})
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, domain.ErrInsufficientInventory):
				insufficient.Add(1)
			case errors.Is(err, domain.ErrInventoryRetriesExhausted):
				exhausted.Add(1)
			default:
				failed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failed.Load() != 0 {
		t.Errorf("expected no unexpected failures, got %d", failed.Load())
	}
	if success.Load() > int32(initialStock) {
		t.Errorf("oversold: %d successes with stock %d", success.Load(), initialStock)
	}

	// Conservation: final stock accounts exactly for committed orders.
	want := initialStock - int(success.Load())
	if got := currentInventory(t, env, product.ID); got != want {
		t.Errorf("expected inventory %d, got %d", want, got)
	}

	var committed int
	env.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM order_products WHERE product_id = ?`,
		product.ID).Scan(&committed)
	if committed != int(success.Load()) {
		t.Errorf("expected %d committed units, got %d", success.Load(), committed)
	}
}

func TestIntegration_InventoryAdjustment(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	product := createTestProduct(t, env, 10)

	log := logrus.New()
	log.SetOutput(io.Discard)
	inventory := service.NewInventoryService(env.store, logrus.NewEntry(log))

	updated, err := inventory.SetInventory(ctx, product.ID, 250)
	if err != nil {
		t.Fatalf("set inventory: %v", err)
	}
	if updated.Inventory != 250 {
		t.Errorf("expected inventory 250, got %d", updated.Inventory)
	}
	if updated.Version != product.Version+1 {
		t.Errorf("expected version bump to %d, got %d", product.Version+1, updated.Version)
	}

	got, err := inventory.GetInventory(ctx, product.ID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if got != 250 {
		t.Errorf("expected inventory 250, got %d", got)
	}
}
