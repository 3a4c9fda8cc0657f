package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/lfs/internal/app"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type Seed struct {
	// Random is the faker seed, zero picks a random one.
	Random     uint64 `env:"SEED_RANDOM" envDefault:"0"`
	Categories int    `env:"SEED_CATEGORIES" envDefault:"6"`
	Products   int    `env:"SEED_PRODUCTS" envDefault:"60"`
	Orders     int    `env:"SEED_ORDERS" envDefault:"25"`
}

type Config struct {
	app.Config
	Log      config.Log
	Postgres config.Postgres
	Seed     Seed
}

func main() {
	time.Local = time.UTC

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New[Config]()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("failed to create pgx pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	infra, err := app.NewInfra(ctx, cfg.Config, logger)
	if err != nil {
		logger.Error("failed to create infrastructure", slog.Any("error", err))
		os.Exit(1)
	}
	defer infra.Close()

	dbClient := db.NewClient(pool)
	svcs := app.NewServices(cfg.Config, logger, dbClient, metric.New(prometheus.NewRegistry()), infra, app.NewRepositories(dbClient))

	s := &seeder{
		cfg:    cfg.Seed,
		shop:   cfg.Shop,
		logger: logger,
		faker:  gofakeit.New(cfg.Seed.Random),
		svcs:   svcs,
	}
	if err := s.run(ctx); err != nil {
		logger.Error("failed to seed database", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("database seeded",
		slog.Int("categories", len(s.categories)),
		slog.Int("products", len(s.products)),
		slog.Int("orders", s.orders))
}
