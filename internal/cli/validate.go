package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sm2x/neos-backups/internal/compress"
	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/http"
	"github.com/sm2x/neos-backups/internal/metrics"
	"github.com/sm2x/neos-backups/internal/notify"
	"github.com/sm2x/neos-backups/internal/step"
	"github.com/sm2x/neos-backups/internal/store"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and test connectivity to external services.

This checks:
- Config file syntax and values
- Compressor and step types
- Remote store construction
- Pushgateway connectivity (if enabled)
- Apprise server connectivity (if enabled)`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	fmt.Println("Configuration:")
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ Config file: %v\n", err)
		return err
	}
	fmt.Printf("  ✓ Config file syntax valid\n")

	configPath, _ := config.DefaultConfigPath()
	if cfgFile != "" {
		configPath = cfgFile
	}
	fmt.Printf("  Config file: %s\n", configPath)
	fmt.Printf("  Compressor: %s\n", cfg.Compressor)
	fmt.Printf("  Steps: %d\n", len(cfg.Steps))
	fmt.Printf("  Store: %s\n", cfg.Store.Type)
	fmt.Printf("  Index: %s\n", cfg.Index.Path)
	fmt.Printf("  Interval: %s\n", cfg.Interval)
	fmt.Printf("  Backup on startup: %t\n", cfg.BackupOnStartup)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics: enabled\n")
		fmt.Printf("  Pushgateway URL: %s\n", cfg.Metrics.PushgatewayURL)
	} else {
		fmt.Printf("  Metrics: disabled\n")
	}
	if cfg.Apprise.Enabled {
		fmt.Printf("  Notifications: enabled\n")
		fmt.Printf("  Apprise URL: %s\n", cfg.Apprise.URL)
		fmt.Printf("  Notification level: %s\n", cfg.Apprise.Notify)
	} else {
		fmt.Printf("  Notifications: disabled\n")
	}
	fmt.Println()

	fmt.Println("Checks:")
	logger, _ := setupLogging(cfg)

	if _, err := compress.New(cfg.Compressor); err != nil {
		fmt.Printf("  ✗ Compressor: %v (available: %v)\n", err, compress.Names())
	} else {
		fmt.Printf("  ✓ Compressor %q available\n", cfg.Compressor)
	}

	stepsOK := true
	for _, s := range cfg.Steps {
		if _, err := step.New(s.Type, cfg.TempPath, s.Name, s.Options); err != nil {
			fmt.Printf("  ✗ Step %q: %v (available types: %v)\n", s.Name, err, step.Types())
			stepsOK = false
		}
	}
	if stepsOK {
		fmt.Printf("  ✓ All %d steps can be instantiated\n", len(cfg.Steps))
	}

	if _, err := store.New(cfg.Store); err != nil {
		fmt.Printf("  ✗ Remote store: %v\n", err)
	} else {
		fmt.Printf("  ✓ Remote store %q configured\n", cfg.Store.Type)
	}

	// No retries during validation, connectivity should fail fast.
	httpClient := http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  1,
			InitialDelay: time.Second,
			MaxDelay:     time.Second,
		}),
		http.WithLogger(logger),
	)

	if cfg.Metrics.Enabled {
		pushgatewayClient := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)

		if err := pushgatewayClient.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Pushgateway: %v\n", err)
		} else {
			fmt.Printf("  ✓ Pushgateway reachable\n")
		}
	}

	if cfg.Apprise.Enabled {
		appriseClient := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)

		if err := appriseClient.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Apprise server: %v\n", err)
		} else {
			fmt.Printf("  ✓ Apprise server reachable\n")
		}
	}

	fmt.Println()
	fmt.Println("Validation complete.")
	return nil
}
