// Stress drives concurrent order placements against one product and
// reports how the retry loop and stock checks hold up under contention.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fastenworks/partstore/internal/adapter/storage"
	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/core/service"
	"github.com/fastenworks/partstore/internal/logger"
)

func main() {
	var (
		dsn            = flag.String("dsn", "root:root@tcp(localhost:3306)/partstore?parseTime=true", "mysql dsn")
		migrationsPath = flag.String("migrations", "db/migrations", "migrations directory")
		requests       = flag.Int("requests", 50, "concurrent placement requests")
		initialStock   = flag.Int("stock", 20, "initial inventory for the test product")
		quantity       = flag.Int("quantity", 1, "quantity per order")
	)
	flag.Parse()

	ctx := context.Background()

	db, err := storage.Open(ctx, *dsn)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, *migrationsPath); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	logg := logger.New("warn")
	store := storage.NewSQLStore(db, logger.Component(logg, "storage"))
	orders := service.NewOrderService(store, nil, logger.Component(logg, "orders"))

	product, err := store.Create(ctx, domain.NewProduct{
		Name:       "stress-test-bolt-" + uuid.NewString()[:8],
		Category:   "bolts",
		Material:   "steel",
		ThreadSize: "M8",
		Finish:     "zinc",
		Quantity:   *initialStock,
		Price:      0.25,
		Inventory:  *initialStock,
	})
	if err != nil {
		log.Fatalf("failed to create test product: %v", err)
	}
	log.Printf("created product %d with inventory %d", product.ID, *initialStock)

	var (
		success      atomic.Int32
		insufficient atomic.Int32
		exhausted    atomic.Int32
		failed       atomic.Int32
	)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := orders.PlaceOrder(ctx, service.PlaceOrderInput{
				CustomerName: fmt.Sprintf("stress-user-%d", n),
				Items: []service.LineItemInput{
					{ProductID: product.ID, Quantity: *quantity},
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
				log.Printf("request %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	final, err := store.GetByID(ctx, product.ID)
	if err != nil || final == nil {
		log.Fatalf("failed to re-read product: %v", err)
	}

	log.Printf("done in %s", elapsed)
	log.Printf("success=%d insufficient=%d retries_exhausted=%d failed=%d",
		success.Load(), insufficient.Load(), exhausted.Load(), failed.Load())
	log.Printf("final inventory=%d (expected %d)",
		final.Inventory, *initialStock-int(success.Load())**quantity)
}
