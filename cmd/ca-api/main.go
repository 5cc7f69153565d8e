package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/catalog-admin/internal/auth"
	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
	"github.com/tuanvumaihuynh/catalog-admin/internal/http"
	"github.com/tuanvumaihuynh/catalog-admin/internal/log"
	"github.com/tuanvumaihuynh/catalog-admin/internal/repository"
	"github.com/tuanvumaihuynh/catalog-admin/internal/service"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
	"github.com/tuanvumaihuynh/catalog-admin/internal/telemetry"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		HTTP  config.HTTP
		Store config.Store
		Auth  config.Auth
		Kafka config.Kafka
		Otel  config.Otel
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

	if cfg.Store.URI == "" {
		logger.WarnContext(ctx, "STORE_URI is not set, product requests will fail until it is configured")
	}

	gateway := repository.NewProductGateway(cfg.Store)
	defer func() {
		if err := gateway.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "error closing product gateway", slog.Any("error", err))
		}
	}()

	producer, err := mq.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer producer.Close()

	verifier, err := auth.NewStaticVerifier(cfg.Auth.StaticUsers)
	if err != nil {
		return fmt.Errorf("error creating credential verifier: %w", err)
	}

	productService := service.NewProductService(logger, gateway, producer, cfg.Kafka.Topic)

	svc := http.New(cfg.HTTP, logger, productService, verifier)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
