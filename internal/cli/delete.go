package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteYes bool

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a backup",
		Long: `Remove a backup from the index and delete its archive from the remote
store. This is irreversible, so it asks for confirmation unless --yes is
given.`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

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

	if !deleteYes {
		ok, err := confirm(fmt.Sprintf("Permanently delete backup %s? [y/N]: ", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := orchestrator.Delete(cmd.Context(), name); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted backup %s\n", name)
	return nil
}
