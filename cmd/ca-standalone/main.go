package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apiclient"
	"github.com/tuanvumaihuynh/catalog-admin/internal/auth"
	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
	"github.com/tuanvumaihuynh/catalog-admin/internal/dashboard"
	"github.com/tuanvumaihuynh/catalog-admin/internal/event"
	"github.com/tuanvumaihuynh/catalog-admin/internal/http"
	"github.com/tuanvumaihuynh/catalog-admin/internal/log"
	"github.com/tuanvumaihuynh/catalog-admin/internal/querycache"
	"github.com/tuanvumaihuynh/catalog-admin/internal/repository"
	"github.com/tuanvumaihuynh/catalog-admin/internal/service"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
	"github.com/tuanvumaihuynh/catalog-admin/internal/telemetry"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		HTTP      config.HTTP
		Store     config.Store
		Auth      config.Auth
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
	cache := querycache.NewClient()

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	if cfg.Kafka.Enabled() {
		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}

		wg.Go(func() {
			svc := event.New(logger, kafkaConsumer, cfg.Kafka.Topic, cache, dashboard.ProductsKey)
			cleanup, err := svc.Run(ctx)
			if err != nil {
				panic(fmt.Errorf("error running event service: %w", err))
			}
			logger.InfoContext(ctx, "event service started")

			<-interruptChan

			logger.InfoContext(ctx, "event service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "event service is stopped")
		})
	}

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, productService, verifier)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc, err := dashboard.New(cfg.Dashboard, logger, apiclient.New(cfg.Dashboard.APIURL), cache)
		if err != nil {
			panic(fmt.Errorf("error creating dashboard service: %w", err))
		}
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running dashboard service: %w", err))
		}

		logger.InfoContext(ctx, "dashboard service started", slog.String("address", fmt.Sprintf(":%d", cfg.Dashboard.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "dashboard service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down dashboard service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "dashboard service is stopped")
	})

	wg.Wait()

	return nil
}
