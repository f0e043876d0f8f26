package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/app"
)

// newIngestCmd creates and configures the 'ingest' subcommand.
func newIngestCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Runs the article ingestion pipeline",
		Long: `Fetches recent articles for every configured keyword from the
external news search service and upserts them into the database.
Runs once by default; with --interval it keeps running on that
schedule until interrupted. Re-running over the same window is safe
because every write is idempotent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngestCommand(cmd, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "rerun the pipeline on this interval (0 runs it once)")

	return cmd
}

func runIngestCommand(cmd *cobra.Command, interval time.Duration) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateIngest(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	pipeline, err := application.Pipeline()
	if err != nil {
		return err
	}

	if err := pipeline.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("run ingestion: %w", err)
	}
	if interval <= 0 {
		return nil
	}

	logger.Info("ingestion scheduled", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("ingestion stopped")
			return nil
		case <-ticker.C:
			if err := pipeline.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				// One failed pass must not kill the schedule.
				logger.Error("ingestion pass failed", zap.Error(err))
			}
		}
	}
}
