// Package store provides remote archive storage backends selectable by the
// store.type configuration value.
package store

import (
	"fmt"

	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/domain"
)

// Factory builds a store backend from configuration.
type Factory func(cfg config.StoreConfig) (domain.RemoteStore, error)

var registry = map[string]Factory{}

// Register binds a backend type to its factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a store backend for the configured type.
func New(cfg config.StoreConfig) (domain.RemoteStore, error) {
	f, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
	return f(cfg)
}
