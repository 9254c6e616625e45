package domain

import (
	"context"
	"io"
)

// RemoteStore is name-addressed blob storage for archive files.
// There is no transactional guarantee across calls; the orchestrator treats
// the index as authoritative and keeps store state convergent with it.
type RemoteStore interface {
	// Has reports whether an object exists under key.
	Has(ctx context.Context, key string) (bool, error)

	// Write streams source into the object under key, replacing any
	// previous content.
	Write(ctx context.Context, key string, source io.Reader) error

	// Read streams the object under key. Returns ErrNotFound if absent.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error

	// Name returns the backend identifier (e.g. "local", "azure").
	Name() string
}
