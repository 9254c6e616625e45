package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var restoreYes bool

// NewRestoreCmd creates the restore command.
func NewRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a backup",
		Long: `Download a backup's archive, unpack it, and replay the step pipeline
recorded when the backup was created. This overwrites live application
state, so it asks for confirmation unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runRestore,
	}

	cmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "skip confirmation prompt")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
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

	if !restoreYes {
		ok, err := confirm(fmt.Sprintf("Restoring %s will overwrite live application state. Continue? [y/N]: ", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := orchestrator.Restore(cmd.Context(), name); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Printf("Restored backup %s\n", name)
	return nil
}

// confirm prompts on stdin and returns true for a "y"/"yes" answer.
func confirm(prompt string) (bool, error) {
	fmt.Print(prompt)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
