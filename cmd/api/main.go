package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/vendorcart-backend/api/controllers"
	"github.com/angelmondragon/vendorcart-backend/api/routes"
	"github.com/angelmondragon/vendorcart-backend/internal/checkout"
	"github.com/angelmondragon/vendorcart-backend/internal/orderapi"
	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
	"github.com/angelmondragon/vendorcart-backend/pkg/config"
	"github.com/angelmondragon/vendorcart-backend/pkg/db"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
	"github.com/angelmondragon/vendorcart-backend/pkg/metrics"
	"github.com/angelmondragon/vendorcart-backend/pkg/migrate"
	"github.com/angelmondragon/vendorcart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	orderClient, err := orderapi.NewClient(
		cfg.OrderService.BaseURL,
		orderapi.WithAPIKey(cfg.OrderService.APIKey),
		orderapi.WithTimeout(cfg.OrderService.Timeout),
		orderapi.WithObserver(checkoutMetrics),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service client", err)
		os.Exit(1)
	}

	topupService, err := topup.NewService(topup.NewRepository(dbClient.DB()), orderClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create top-up service", err)
		os.Exit(1)
	}

	sessionStore, err := checkout.NewRedisStore(redisClient, cfg.Checkout.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout session store", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		sessionStore,
		orderClient,
		topupService,
		pricing.NewEngine(cfg.Checkout.CurrencyCode()),
		checkoutMetrics,
		logg,
		checkout.Config{MaxNoteLength: cfg.Checkout.MaxNoteLength},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"currency": string(cfg.Checkout.CurrencyCode()),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			map[string]controllers.Pinger{"postgres": dbClient, "redis": redisClient},
			redisClient,
			registry,
			checkoutService,
			topupService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
