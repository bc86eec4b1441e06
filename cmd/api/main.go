package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuentasclaras/payables-backend/api/routes"
	"github.com/cuentasclaras/payables-backend/internal/extraction"
	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/payments"
	"github.com/cuentasclaras/payables-backend/internal/recurring"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/metrics"
	"github.com/cuentasclaras/payables-backend/pkg/migrate"
	"github.com/cuentasclaras/payables-backend/pkg/pubsub"
	"github.com/cuentasclaras/payables-backend/pkg/redis"
	"github.com/cuentasclaras/payables-backend/pkg/storage/gcs"
)

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cloud storage", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	extractionQueue, err := extraction.NewQueue(pubsubClient.ExtractionPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create extraction queue", err)
		os.Exit(1)
	}

	supplierRepo := suppliers.NewRepository(dbClient.DB())
	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	invoiceRepo := invoices.NewRepository(dbClient.DB())
	invoiceService, err := invoices.NewService(invoiceRepo, gcsClient, extractionQueue, redisClient, pipelineMetrics, cfg.Upload.MaxUploadMB)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		invoiceRepo,
		supplierRepo,
		gcsClient,
		dbClient,
		pipelineMetrics,
		logg,
		cfg.Bank,
		cfg.GCS.DownloadURLExpiry,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	recurringService, err := recurring.NewService(recurring.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create recurring expense service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			invoiceService,
			supplierService,
			paymentService,
			recurringService,
		),
	}

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
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
