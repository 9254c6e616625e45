// Package step provides the backup step registry and built-in step types.
package step

import (
	"fmt"
	"sort"

	"github.com/sm2x/neos-backups/internal/domain"
)

// Factory builds a step instance bound to a working directory.
type Factory func(workingDir, name string, options map[string]any) (domain.Step, error)

var registry = map[string]Factory{}

// Register adds a step type to the registry. Call from an init function.
func Register(stepType string, factory Factory) {
	registry[stepType] = factory
}

// New builds a step of the given type.
func New(stepType, workingDir, name string, options map[string]any) (domain.Step, error) {
	factory, ok := registry[stepType]
	if !ok {
		return nil, fmt.Errorf("unknown step type: %s", stepType)
	}
	return factory(workingDir, name, options)
}

// Types returns the registered step type names, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
