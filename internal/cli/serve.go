package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sm2x/neos-backups/internal/app"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backup service in foreground",
		Long: `Run the backup service in foreground mode.

This runs the scheduler loop, creating backups at the configured interval.
Use Ctrl+C to stop.

This is useful for debugging or running in a container.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	logger.Info("starting neos-backups in foreground mode")

	orchestrator, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	scheduler := app.NewScheduler(orchestrator,
		app.WithInterval(cfg.Interval),
		app.WithBackupOnStartup(cfg.BackupOnStartup),
		app.WithSchedulerLogger(logger),
	)

	// Set up signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if err := scheduler.Start(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("scheduler error: %w", err)
	}

	logger.Info("neos-backups stopped")
	return nil
}
