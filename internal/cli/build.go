package cli

import (
	"fmt"
	"log/slog"

	"github.com/sm2x/neos-backups/internal/app"
	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/http"
	"github.com/sm2x/neos-backups/internal/index"
	"github.com/sm2x/neos-backups/internal/metrics"
	"github.com/sm2x/neos-backups/internal/notify"
	"github.com/sm2x/neos-backups/internal/store"
)

// newHTTPClient builds the shared retrying HTTP client from config.
func newHTTPClient(cfg *config.Config, logger *slog.Logger) *http.Client {
	return http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
		}),
		http.WithLogger(logger),
	)
}

// newOrchestrator wires the index, remote store, metrics pusher, and
// notifier into an Orchestrator according to the loaded config.
func newOrchestrator(cfg *config.Config, logger *slog.Logger) (*app.Orchestrator, error) {
	idx, err := index.OpenFile(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	remote, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	httpClient := newHTTPClient(cfg, logger)

	opts := []app.Option{
		app.WithLogger(logger),
	}

	if cfg.Metrics.Enabled {
		pusher := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)
		opts = append(opts, app.WithMetricsPusher(pusher))
	}

	if cfg.Apprise.Enabled {
		notifier := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)
		opts = append(opts, app.WithNotifier(notifier))
	}

	return app.New(cfg, idx, remote, opts...), nil
}
