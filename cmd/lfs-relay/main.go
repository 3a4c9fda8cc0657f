package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/relay"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/internal/storage/mq"
	"github.com/tuanvumaihuynh/lfs/internal/telemetry"
	"github.com/tuanvumaihuynh/lfs/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running relay application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
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

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	metrics := metric.New(prometheus.DefaultRegisterer)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	var metricsSrv *http.Server
	if cfg.Relay.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Relay.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "error serving metrics", slog.Any("error", err))
			}
		}()
	}

	interruptChan := cmdutil.InterruptChan()

	svc := relay.NewService(cfg.Relay, logger, dbClient, metrics, outboxMsgRepository, kafkaProducer)
	cleanup := svc.Run(ctx)
	logger.InfoContext(ctx, "relay service started", slog.Int("max_attempts", int(cfg.Relay.MaxAttempts)))

	<-interruptChan

	logger.InfoContext(ctx, "relay service is shutting down")
	cleanup()
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Relay.ShutdownTimeout)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(ctx, "error shutting down metrics server", slog.Any("error", err))
		}
	}

	logger.InfoContext(ctx, "relay service is stopped")

	return nil
}
