package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuentasclaras/payables-backend/internal/extraction"
	"github.com/cuentasclaras/payables-backend/internal/invoices"
	"github.com/cuentasclaras/payables-backend/internal/suppliers"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db"
	"github.com/cuentasclaras/payables-backend/pkg/instance"
	"github.com/cuentasclaras/payables-backend/pkg/logger"
	"github.com/cuentasclaras/payables-backend/pkg/metrics"
	"github.com/cuentasclaras/payables-backend/pkg/migrate"
	"github.com/cuentasclaras/payables-backend/pkg/pubsub"
	"github.com/cuentasclaras/payables-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "extraction-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "extraction-worker"

	logg = logger.New(logger.Options{
		ServiceName: "extraction-worker",
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

	modelClient, err := extraction.NewClient(cfg.Anthropic)
	if err != nil {
		logg.Error(context.Background(), "failed to create extraction model client", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(suppliers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	pipeline, err := extraction.NewPipeline(
		invoices.NewRepository(dbClient.DB()),
		supplierService,
		gcsClient,
		modelClient,
		cfg.Anthropic.Model,
		dbClient,
		pipelineMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create extraction pipeline", err)
		os.Exit(1)
	}

	consumer, err := extraction.NewConsumer(pipeline, pubsubClient.ExtractionSubscription(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create extraction consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting extraction worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "extraction worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "extraction worker shutting down gracefully")
}
