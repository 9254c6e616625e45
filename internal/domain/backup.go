// Package domain defines core business types and interfaces.
package domain

import "time"

// StepConfig describes one configured backup step. Steps run in the order
// they appear in configuration, so a slice is used rather than a map.
type StepConfig struct {
	// Name identifies the step instance (e.g. "database", "site-config").
	Name string `json:"name" mapstructure:"name"`

	// Type selects the step implementation from the step registry.
	Type string `json:"type" mapstructure:"type"`

	// Options holds implementation-specific configuration.
	Options map[string]any `json:"options,omitempty" mapstructure:"options"`
}

// Meta records how a backup was produced. It is persisted with the index
// entry so a restore replays the exact step pipeline and compressor used at
// creation time, even if the live configuration has changed since.
type Meta struct {
	Steps      []StepConfig `json:"steps"`
	Compressor string       `json:"compressor"`
}

// Backup is one catalog entry. Name and Meta are immutable once the backup
// has been added to the index; only deletion removes them.
type Backup struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Meta      Meta      `json:"meta"`
}
