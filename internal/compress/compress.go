// Package compress provides archive compressors selectable by name.
//
// Compressors are registered under a stable identifier which is recorded in
// each backup's metadata, so a restore years later can resolve the exact
// implementation that produced the archive.
package compress

import (
	"fmt"
	"sort"

	"github.com/sm2x/neos-backups/internal/domain"
)

// Factory builds a compressor instance.
type Factory func() domain.Compressor

var registry = map[string]Factory{}

// Register binds a compressor name to its factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a compressor by name.
func New(name string) (domain.Compressor, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
	return f(), nil
}

// Names returns all registered compressor names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
