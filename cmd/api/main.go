package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nevbird/storefront-api/api/routes"
	cartsvc "github.com/nevbird/storefront-api/internal/cart"
	"github.com/nevbird/storefront-api/internal/catalog"
	checkoutsvc "github.com/nevbird/storefront-api/internal/checkout"
	"github.com/nevbird/storefront-api/pkg/config"
	"github.com/nevbird/storefront-api/pkg/logger"
	"github.com/nevbird/storefront-api/pkg/metrics"
	"github.com/nevbird/storefront-api/pkg/payments"
	"github.com/nevbird/storefront-api/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	catalogSvc, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog", err)
		os.Exit(1)
	}

	var (
		redisClient *redis.Client
		slots       cartsvc.SlotFactory
	)
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		slots = cartsvc.NewRedisSlotFactory(redisClient, cfg.Cart.SlotTTL)
	} else {
		logg.Warn(context.Background(), "no redis configured, carts are memory-only")
		slots = cartsvc.NewMemorySlotFactory()
	}

	cartManager := cartsvc.NewManager(slots, logg)

	paymentsClient, err := payments.NewClient(cfg.Payments, logg)
	if err != nil {
		paymentsClient = nil
		logg.Warn(context.Background(), "no payment endpoint configured, checkout runs in mock mode")
	}

	var sessions checkoutsvc.SessionCreator
	if paymentsClient != nil {
		sessions = paymentsClient
	}
	checkoutSvc := checkoutsvc.NewService(cfg.Checkout, catalogSvc, sessions, cfg.Payments.SuccessURL, logg)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			RedisClient: redisClient,
			Catalog:     catalogSvc,
			CartManager: cartManager,
			Checkout:    checkoutSvc,
			Metrics:     httpMetrics,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api stopped unexpectedly", err)
		os.Exit(1)
	}
}
