package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/lfs/internal/app"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lfs-ctl",
	Short:         "Operator commands for the LFS shop",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(calculateSalesCmd)
	rootCmd.AddCommand(sendRatingMailsCmd)
	rootCmd.AddCommand(runExportCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// env is the wired application a command runs against.
type env struct {
	logger *slog.Logger
	svcs   app.Services

	pool  *pgxpool.Pool
	infra *app.Infra
}

func (e *env) Close() {
	e.infra.Close()
	e.pool.Close()
}

func boot(ctx context.Context) (*env, error) {
	time.Local = time.UTC

	type Config struct {
		app.Config
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	infra, err := app.NewInfra(ctx, cfg.Config, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create infrastructure: %w", err)
	}

	dbClient := db.NewClient(pool)
	svcs := app.NewServices(cfg.Config, logger, dbClient, metric.New(prometheus.NewRegistry()), infra, app.NewRepositories(dbClient))

	return &env{
		logger: logger,
		svcs:   svcs,
		pool:   pool,
		infra:  infra,
	}, nil
}

// withEnv boots the application around fn.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return fn(cmd, args, e)
	}
}
