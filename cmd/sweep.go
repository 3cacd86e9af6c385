package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationService/internal/sweeper"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Complete finished reservations once and exit (for an external cron)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context())
		},
	}
}

func runSweep(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	sw := sweeper.New(a.reservations, a.events, a.metrics, a.log, sweeper.WithBatchSize(a.cfg.Sweeper.BatchSize))
	result, err := sw.SweepOnce(ctx)
	if err != nil {
		return err
	}

	a.log.Info("Sweep finished: completed=%d, skipped=%d, failed=%d", result.Completed, result.Skipped, result.Failed)
	return nil
}
