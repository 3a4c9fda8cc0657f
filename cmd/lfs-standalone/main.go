package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/lfs/internal/app"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/http"
	"github.com/tuanvumaihuynh/lfs/internal/job"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/relay"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/internal/storage/mq"
	"github.com/tuanvumaihuynh/lfs/internal/telemetry"
	"github.com/tuanvumaihuynh/lfs/pkg/cmdutil"
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
		app.Config
		Log       config.Log
		Postgres  config.Postgres
		HTTP      config.HTTP
		RateLimit config.RateLimit
		Relay     config.Relay
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

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	metrics := metric.New(prometheus.DefaultRegisterer)

	infra, err := app.NewInfra(ctx, cfg.Config, logger)
	if err != nil {
		return fmt.Errorf("error creating infrastructure: %w", err)
	}
	defer infra.Close()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	repos := app.NewRepositories(dbClient)
	svcs := app.NewServices(cfg.Config, logger, dbClient, metrics, infra, repos)

	httpSvc, err := http.New(cfg.HTTP, cfg.RateLimit, logger, metrics, http.Services{
		Auth:          svcs.Auth,
		Catalog:       svcs.Catalog,
		CatalogManage: svcs.CatalogManage,
		Cart:          svcs.Cart,
		Checkout:      svcs.Checkout,
		Order:         svcs.Order,
		Customer:      svcs.Customer,
		Method:        svcs.Method,
		Discount:      svcs.Discount,
		Voucher:       svcs.Voucher,
		Marketing:     svcs.Marketing,
		Export:        svcs.Export,
		Portlet:       svcs.Portlet,
		PayPal:        svcs.PayPal,
		Health:        dbClient,
	})
	if err != nil {
		return fmt.Errorf("error creating http service: %w", err)
	}

	eventHandler := event.NewHandler(logger, cfg.Shop, cfg.PayPal, infra.Cache, infra.Renderer, infra.Sender, repos.Order, repos.Method)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, eventHandler, metrics)
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

	wg.Go(func() {
		cleanup, err := httpSvc.Run(ctx)
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
		svc := relay.NewService(cfg.Relay, logger, dbClient, metrics, repos.OutboxMsg, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Go(func() {
		scheduler := job.NewScheduler(logger, job.MarketingJobs(cfg.Marketing, svcs.Marketing)...)
		cleanup := scheduler.Run(ctx)
		logger.InfoContext(ctx, "job scheduler started")

		<-interruptChan

		logger.InfoContext(ctx, "job scheduler is shutting down")
		cleanup()

		logger.InfoContext(ctx, "job scheduler is stopped")
	})

	wg.Wait()

	return nil
}
