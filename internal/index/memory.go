package index

import (
	"fmt"
	"sync"

	"github.com/sm2x/neos-backups/internal/domain"
)

// MemoryIndex keeps the catalog in memory only. Useful for tests and
// throwaway runs; everything is lost when the process exits.
type MemoryIndex struct {
	mu      sync.Mutex
	entries []domain.Backup
}

// NewMemory creates an empty in-memory index.
func NewMemory() *MemoryIndex {
	return &MemoryIndex{}
}

func (idx *MemoryIndex) List(offset, limit int) ([]domain.Backup, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return listEntries(idx.entries, offset, limit), nil
}

func (idx *MemoryIndex) Get(name string) (domain.Backup, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return getEntry(idx.entries, name)
}

func (idx *MemoryIndex) Add(b domain.Backup) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range idx.entries {
		if e.Name == b.Name {
			return fmt.Errorf("%s: %w", b.Name, domain.ErrExists)
		}
	}
	idx.entries = append(idx.entries, b)
	return nil
}

func (idx *MemoryIndex) Delete(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, e := range idx.entries {
		if e.Name == name {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", name, domain.ErrNotFound)
}

func (idx *MemoryIndex) Count() (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries), nil
}

var _ domain.Index = (*MemoryIndex)(nil)
