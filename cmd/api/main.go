package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eventhub/internal/broker"
	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/db"
	"eventhub/internal/httpserver"
	addressrepo "eventhub/internal/repository/address"
	cartrepo "eventhub/internal/repository/cart"
	eventrepo "eventhub/internal/repository/event"
	orderrepo "eventhub/internal/repository/order"
	paymentrepo "eventhub/internal/repository/payment"
	userrepo "eventhub/internal/repository/user"
	wishlistrepo "eventhub/internal/repository/wishlist"
	addresssvc "eventhub/internal/service/address"
	authsvc "eventhub/internal/service/auth"
	cartsvc "eventhub/internal/service/cart"
	catalogsvc "eventhub/internal/service/catalog"
	ordersvc "eventhub/internal/service/order"
	paymentsvc "eventhub/internal/service/payment"
	wishlistsvc "eventhub/internal/service/wishlist"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var events broker.Publisher = broker.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := broker.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256, logger)
		producer.Start()
		defer producer.Close()
		events = producer
		logger.Printf("publishing order events to %s", cfg.KafkaTopic)
	}

	eventRepo := eventrepo.NewPostgres(dbpool, logger)
	catalogService := catalogsvc.New(eventRepo, nil, logger)
	deps := httpserver.Deps{CORSOrigins: cfg.CORSOrigins}
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		eventCache := cache.NewEventCache(rdb, cfg.CacheTTL, logger)
		catalogService = catalogsvc.New(eventRepo, eventCache, logger)
		deps.Cache = eventCache
		logger.Printf("catalog cache enabled at %s", cfg.RedisAddr)
	}

	authService, err := authsvc.New(userrepo.NewPostgres(dbpool, logger), cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatalf("init auth: %v", err)
	}

	deps.AuthSvc = authService
	deps.CatalogSvc = catalogService
	deps.CartSvc = cartsvc.New(cartrepo.NewPostgres(dbpool, logger))
	deps.OrderSvc = ordersvc.New(orderrepo.NewPostgres(dbpool, logger), events, logger)
	deps.AddressSvc = addresssvc.New(addressrepo.NewPostgres(dbpool, logger))
	deps.PaymentSvc = paymentsvc.New(paymentrepo.NewPostgres(dbpool, logger))
	deps.WishlistSvc = wishlistsvc.New(wishlistrepo.NewPostgres(dbpool, logger))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
