package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apiclient"
	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
	"github.com/tuanvumaihuynh/catalog-admin/internal/dashboard"
	"github.com/tuanvumaihuynh/catalog-admin/internal/event"
	"github.com/tuanvumaihuynh/catalog-admin/internal/log"
	"github.com/tuanvumaihuynh/catalog-admin/internal/querycache"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
	"github.com/tuanvumaihuynh/catalog-admin/internal/telemetry"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running dashboard application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		Dashboard config.Dashboard
		Kafka     config.Kafka
		Otel      config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	cache := querycache.NewClient()

	svc, err := dashboard.New(cfg.Dashboard, logger, apiclient.New(cfg.Dashboard.APIURL), cache)
	if err != nil {
		return fmt.Errorf("error creating dashboard service: %w", err)
	}

	if cfg.Kafka.Enabled() {
		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}

		eventCleanup, err := event.New(logger, kafkaConsumer, cfg.Kafka.Topic, cache, dashboard.ProductsKey).Run(ctx)
		if err != nil {
			return fmt.Errorf("error running event service: %w", err)
		}
		defer eventCleanup()
		logger.InfoContext(ctx, "event service started")
	}

	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running dashboard service: %w", err)
	}
	logger.InfoContext(ctx, "dashboard service started", slog.String("address", fmt.Sprintf(":%d", cfg.Dashboard.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "dashboard service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down dashboard service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "dashboard service is stopped")

	return nil
}
