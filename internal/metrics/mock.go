package metrics

import (
	"context"

	"github.com/sm2x/neos-backups/internal/domain"
)

// MockPusher is a mock implementation of domain.MetricsPusher for testing.
type MockPusher struct {
	PushFunc     func(ctx context.Context, metrics *domain.Metrics) error
	ValidateFunc func(ctx context.Context) error

	// PushedMetrics records all metrics batches passed to Push.
	PushedMetrics []*domain.Metrics
}

func (m *MockPusher) Push(ctx context.Context, metrics *domain.Metrics) error {
	m.PushedMetrics = append(m.PushedMetrics, metrics)
	if m.PushFunc != nil {
		return m.PushFunc(ctx, metrics)
	}
	return nil
}

func (m *MockPusher) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

var _ domain.MetricsPusher = (*MockPusher)(nil)
