// Package index provides implementations of the backup catalog.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sm2x/neos-backups/internal/domain"
)

// FileIndex persists the catalog as a single JSON file. Every mutation is
// written through before it returns, via a temp file and atomic rename, so a
// crash never leaves a half-written index behind.
type FileIndex struct {
	mu      sync.Mutex
	path    string
	entries []domain.Backup
}

// OpenFile loads the index at path, creating the parent directory if needed.
// A missing file yields an empty index.
func OpenFile(path string) (*FileIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	idx := &FileIndex{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, &idx.entries); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return idx, nil
}

// List returns backups in insertion order, skipping offset entries. A limit
// of 0 means no limit.
func (idx *FileIndex) List(offset, limit int) ([]domain.Backup, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return listEntries(idx.entries, offset, limit), nil
}

// Get returns the backup with the given name.
func (idx *FileIndex) Get(name string) (domain.Backup, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return getEntry(idx.entries, name)
}

// Add appends a backup and persists the index.
func (idx *FileIndex) Add(b domain.Backup) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, e := range idx.entries {
		if e.Name == b.Name {
			return fmt.Errorf("%s: %w", b.Name, domain.ErrExists)
		}
	}

	idx.entries = append(idx.entries, b)
	if err := idx.persist(); err != nil {
		idx.entries = idx.entries[:len(idx.entries)-1]
		return err
	}
	return nil
}

// Delete removes the entry with the given name and persists the index.
func (idx *FileIndex) Delete(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	pos := -1
	for i, e := range idx.entries {
		if e.Name == name {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}

	removed := idx.entries[pos]
	idx.entries = append(idx.entries[:pos], idx.entries[pos+1:]...)
	if err := idx.persist(); err != nil {
		idx.entries = append(idx.entries[:pos], append([]domain.Backup{removed}, idx.entries[pos:]...)...)
		return err
	}
	return nil
}

// Count returns the number of entries.
func (idx *FileIndex) Count() (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries), nil
}

func (idx *FileIndex) persist() error {
	data, err := json.MarshalIndent(idx.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.Rename(tmpName, idx.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

func listEntries(entries []domain.Backup, offset, limit int) []domain.Backup {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []domain.Backup{}
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]domain.Backup, end-offset)
	copy(out, entries[offset:end])
	return out
}

func getEntry(entries []domain.Backup, name string) (domain.Backup, error) {
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return domain.Backup{}, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
}

var _ domain.Index = (*FileIndex)(nil)
