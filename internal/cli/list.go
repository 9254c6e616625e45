package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listOffset int
	listLimit  int
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups",
		Long:  `List backups from the index in creation order.`,
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().IntVar(&listOffset, "offset", 0, "number of entries to skip")
	cmd.Flags().IntVar(&listLimit, "limit", 0, "maximum entries to show (0 = all)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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

	backups, err := orchestrator.List(listOffset, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tCOMPRESSOR\tSTEPS")
	for _, b := range backups {
		steps := make([]string, len(b.Meta.Steps))
		for i, s := range b.Meta.Steps {
			steps[i] = s.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.Name,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.Meta.Compressor,
			strings.Join(steps, ","),
		)
	}
	return w.Flush()
}
