package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new backup",
		Long: `Run the configured step pipeline, package the captured state into an
archive, upload it to the remote store, and record the backup in the index.`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	orchestrator, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	backup, err := orchestrator.Create(cmd.Context())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("Created backup %s\n", backup.Name)
	return nil
}
