package step

import (
	"context"

	"github.com/sm2x/neos-backups/internal/domain"
)

// MockStep is a configurable step for testing. Calls are recorded; behavior
// defaults to success and can be overridden via the Func fields.
type MockStep struct {
	StepName string

	BackupFunc  func(ctx context.Context) error
	RestoreFunc func(ctx context.Context) error
	CommitFunc  func(ctx context.Context) error

	BackupCalls  int
	RestoreCalls int
	CommitCalls  int
}

func (m *MockStep) Name() string { return m.StepName }

func (m *MockStep) Backup(ctx context.Context) error {
	m.BackupCalls++
	if m.BackupFunc != nil {
		return m.BackupFunc(ctx)
	}
	return nil
}

func (m *MockStep) Restore(ctx context.Context) error {
	m.RestoreCalls++
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx)
	}
	return nil
}

func (m *MockStep) Commit(ctx context.Context) error {
	m.CommitCalls++
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

var (
	_ domain.Step      = (*MockStep)(nil)
	_ domain.Committer = (*MockStep)(nil)
)
