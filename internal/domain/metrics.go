package domain

import (
	"context"
	"time"
)

// Metrics is a batch of measurements pushed after an operation.
type Metrics struct {
	// Timestamp when metrics were collected.
	Timestamp time.Time

	// Hostname of the machine running the orchestrator.
	Hostname string

	// ServiceUp indicates whether the process is (still) running. Serve mode
	// pushes a final ServiceUp=false sample on shutdown.
	ServiceUp bool

	// IndexEntries is the current number of backups in the index.
	IndexEntries int

	// Results from orchestrator operations.
	Results []*OperationResult
}

// NewMetrics creates a Metrics batch for the given host.
func NewMetrics(hostname string) *Metrics {
	return &Metrics{
		Timestamp: time.Now(),
		Hostname:  hostname,
		ServiceUp: true,
		Results:   make([]*OperationResult, 0),
	}
}

// AddResult appends an operation result to the batch.
func (m *Metrics) AddResult(result *OperationResult) {
	if result != nil {
		m.Results = append(m.Results, result)
	}
}

// MetricsPusher pushes metrics to a remote endpoint.
type MetricsPusher interface {
	// Push sends metrics to the remote endpoint.
	Push(ctx context.Context, metrics *Metrics) error

	// Validate checks if the pusher is properly configured.
	Validate(ctx context.Context) error
}
