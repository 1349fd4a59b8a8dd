package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fastenworks/partstore/internal/adapter/event"
	"github.com/fastenworks/partstore/internal/adapter/handler"
	"github.com/fastenworks/partstore/internal/adapter/storage"
	"github.com/fastenworks/partstore/internal/config"
	"github.com/fastenworks/partstore/internal/core/service"
	"github.com/fastenworks/partstore/internal/importer"
	"github.com/fastenworks/partstore/internal/logger"
	"github.com/fastenworks/partstore/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	// MySQL is the source of truth; refuse to start without it.
	db, err := storage.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mysql")
	}
	defer db.Close()
	log.Info("connected to mysql")

	if err := storage.Migrate(db, cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}
	log.Info("migrations applied")

	sqlStore := storage.NewSQLStore(db, logger.Component(log, "storage"))

	// Redis is optional; without it catalog reads hit MySQL directly.
	var products port.ProductStore = sqlStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		cache := storage.NewRedisCache(rdb, cfg.CacheTTL)
		products = storage.NewCachedProductStore(sqlStore, cache, logger.Component(log, "cache"))
		defer rdb.Close()
		log.Info("connected to redis")
	}

	// AMQP is optional; without it order.created events are dropped.
	var publisher port.OrderEventPublisher = event.NopPublisher{}
	if cfg.AMQPURL != "" {
		mq, err := event.Dial(cfg.AMQPURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer mq.Close()

		publisher, err = event.NewOrderPublisher(mq, logger.Component(log, "events"))
		if err != nil {
			log.WithError(err).Fatal("failed to set up order publisher")
		}
		log.Info("connected to rabbitmq")
	}

	orderService := service.NewOrderService(sqlStore, publisher, logger.Component(log, "orders"))
	inventoryService := service.NewInventoryService(products, logger.Component(log, "inventory"))
	catalogService := service.NewCatalogService(products, logger.Component(log, "catalog"))
	feedImporter := importer.New(products, logger.Component(log, "importer"))

	httpHandler := handler.NewHTTPHandler(
		orderService,
		inventoryService,
		catalogService,
		feedImporter,
		logger.Component(log, "http"),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("http server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown error")
	}
	log.Info("http server stopped")
}
