// Package metrics provides implementations for pushing metrics to remote endpoints.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/sm2x/neos-backups/internal/domain"
	"github.com/sm2x/neos-backups/internal/http"
	"github.com/sm2x/neos-backups/pkg/version"
)

const (
	metricsJobName = "neos-backups"
	contentType    = "text/plain; charset=utf-8"
)

// PushgatewayClient pushes metrics to a Prometheus Pushgateway.
type PushgatewayClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushgatewayOption configures a PushgatewayClient.
type PushgatewayOption func(*PushgatewayClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.logger = logger
	}
}

// NewPushgatewayClient creates a new PushgatewayClient.
func NewPushgatewayClient(url string, opts ...PushgatewayOption) *PushgatewayClient {
	p := &PushgatewayClient{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: http.NewClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Push sends metrics to the Pushgateway.
func (p *PushgatewayClient) Push(ctx context.Context, metrics *domain.Metrics) error {
	body := p.buildMetrics(metrics)

	pushURL := fmt.Sprintf("%s/metrics/job/%s/instance/%s", p.url, metricsJobName, metrics.Hostname)

	p.logger.Debug("pushing metrics to pushgateway",
		"url", pushURL,
		"results", len(metrics.Results),
	)

	resp, err := p.httpClient.Post(ctx, pushURL, contentType, []byte(body))
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushgateway returned status %d: %s", resp.StatusCode, string(resp.Body))
	}

	p.logger.Debug("metrics pushed successfully")
	return nil
}

// Validate checks if the Pushgateway is reachable.
func (p *PushgatewayClient) Validate(ctx context.Context) error {
	// Pushgateway typically has a /-/ready endpoint
	readyURL := fmt.Sprintf("%s/-/ready", p.url)

	if err := p.httpClient.CheckConnectivity(ctx, readyURL); err != nil {
		// Try the root URL as fallback
		if err2 := p.httpClient.CheckConnectivity(ctx, p.url); err2 != nil {
			return fmt.Errorf("pushgateway not reachable at %s: %w", p.url, err)
		}
	}

	return nil
}

// buildMetrics constructs the Prometheus text format metrics.
func (p *PushgatewayClient) buildMetrics(m *domain.Metrics) string {
	var b strings.Builder

	b.WriteString("# HELP neos_backups_up Service is running\n")
	b.WriteString("# TYPE neos_backups_up gauge\n")
	if m.ServiceUp {
		b.WriteString("neos_backups_up 1\n")
	} else {
		b.WriteString("neos_backups_up 0\n")
	}
	b.WriteString("\n")

	versionInfo := version.Get()
	b.WriteString("# HELP neos_backups_info Build information\n")
	b.WriteString("# TYPE neos_backups_info gauge\n")
	b.WriteString(fmt.Sprintf("neos_backups_info{version=%q,go_version=%q} 1\n",
		versionInfo.Version, runtime.Version()))
	b.WriteString("\n")

	b.WriteString("# HELP neos_backups_index_entries Number of backups in the index\n")
	b.WriteString("# TYPE neos_backups_index_entries gauge\n")
	b.WriteString(fmt.Sprintf("neos_backups_index_entries %d\n", m.IndexEntries))
	b.WriteString("\n")

	// Write HELP/TYPE declarations once for result metrics
	if len(m.Results) > 0 {
		b.WriteString("# HELP neos_backups_last_operation_timestamp_seconds Unix timestamp of last operation\n")
		b.WriteString("# TYPE neos_backups_last_operation_timestamp_seconds gauge\n")
		b.WriteString("# HELP neos_backups_last_operation_success Whether the last operation succeeded\n")
		b.WriteString("# TYPE neos_backups_last_operation_success gauge\n")
		b.WriteString("# HELP neos_backups_last_operation_duration_seconds Duration of last operation\n")
		b.WriteString("# TYPE neos_backups_last_operation_duration_seconds gauge\n")
		b.WriteString("# HELP neos_backups_archive_bytes Size of the archive handled by the last operation\n")
		b.WriteString("# TYPE neos_backups_archive_bytes gauge\n")
		b.WriteString("# HELP neos_backups_steps_total Steps executed in the last operation\n")
		b.WriteString("# TYPE neos_backups_steps_total gauge\n")
		b.WriteString("\n")

		for _, result := range m.Results {
			p.writeResultMetrics(&b, result)
		}
	}

	return b.String()
}

// writeResultMetrics writes metric values for a single operation result.
func (p *PushgatewayClient) writeResultMetrics(b *strings.Builder, r *domain.OperationResult) {
	op := r.Operation.String()

	success := 0
	if r.Success {
		success = 1
	}

	b.WriteString(fmt.Sprintf("neos_backups_last_operation_timestamp_seconds{operation=%q} %d\n", op, r.EndTime.Unix()))
	b.WriteString(fmt.Sprintf("neos_backups_last_operation_success{operation=%q} %d\n", op, success))
	b.WriteString(fmt.Sprintf("neos_backups_last_operation_duration_seconds{operation=%q} %.3f\n", op, r.Duration.Seconds()))
	b.WriteString(fmt.Sprintf("neos_backups_archive_bytes{operation=%q} %d\n", op, r.ArchiveBytes))
	b.WriteString(fmt.Sprintf("neos_backups_steps_total{operation=%q} %d\n", op, r.Steps))
}

// Ensure PushgatewayClient implements domain.MetricsPusher.
var _ domain.MetricsPusher = (*PushgatewayClient)(nil)
