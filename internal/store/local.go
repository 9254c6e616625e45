package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("local", func(cfg config.StoreConfig) (domain.RemoteStore, error) {
		return NewLocal(cfg.Local.Path)
	})
}

// Local stores archives as plain files in a directory, typically a mounted
// network share. Also used by tests.
type Local struct {
	dir string
}

// NewLocal creates a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store: path is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("local store: create directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Name returns "local".
func (s *Local) Name() string { return "local" }

// objectPath maps a key to a file path. Keys are flattened to their base
// name so a key can never escape the store directory.
func (s *Local) objectPath(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

// Has reports whether an object exists under key.
func (s *Local) Has(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.objectPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

// Write streams source into the object under key. The object is written to
// a temp file and renamed so a failed write never leaves a partial object
// under the final key.
func (s *Local) Write(ctx context.Context, key string, source io.Reader) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".write-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, source); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, s.objectPath(key)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Read streams the object under key.
func (s *Local) Read(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.objectPath(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the object under key.
func (s *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(s.objectPath(key))
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
