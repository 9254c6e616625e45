package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sm2x/neos-backups/internal/domain"
)

// MockStore is an in-memory RemoteStore for testing. Behavior can be
// overridden per call via the Func fields.
type MockStore struct {
	mu      sync.Mutex
	Objects map[string][]byte

	HasFunc    func(ctx context.Context, key string) (bool, error)
	WriteFunc  func(ctx context.Context, key string, source io.Reader) error
	ReadFunc   func(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, key string) error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{Objects: make(map[string][]byte)}
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) Has(ctx context.Context, key string) (bool, error) {
	if m.HasFunc != nil {
		return m.HasFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok, nil
}

func (m *MockStore) Write(ctx context.Context, key string, source io.Reader) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, key, source)
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return nil
}

func (m *MockStore) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	delete(m.Objects, key)
	return nil
}

// Len returns the number of stored objects.
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

var _ domain.RemoteStore = (*MockStore)(nil)
