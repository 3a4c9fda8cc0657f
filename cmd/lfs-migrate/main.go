package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
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
		// DownTo rolls back to the given version instead of migrating up.
		DownTo int64 `env:"MIGRATE_DOWN_TO" envDefault:"-1"`
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	if cfg.DownTo >= 0 {
		logger.InfoContext(ctx, "rolling back database migrations", slog.Int64("version", cfg.DownTo))

		if err := db.MigrateDownTo(pgxPool, cfg.DownTo); err != nil {
			return fmt.Errorf("error rolling back database: %w", err)
		}

		logger.InfoContext(ctx, "database rollback completed successfully")
		return nil
	}

	logger.InfoContext(ctx, "starting database migration")

	if err := db.Migrate(pgxPool); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	logger.InfoContext(ctx, "database migration completed successfully")

	return nil
}
