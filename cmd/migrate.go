package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded SQL migrations to PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("migrate requires storage.driver = %q, got %q", config.StorageDriverPostgres, cfg.Storage.Driver)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, stopMetrics: make(chan struct{})}
	defer a.Close()

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}

	applied, err := migrations.Apply(ctx, db, log)
	if err != nil {
		return err
	}

	log.Info("Migrations done: %d applied", len(applied))
	return nil
}
