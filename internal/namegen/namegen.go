// Package namegen produces unique, human-readable backup names.
package namegen

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the leading, chronologically sortable part of a name.
const TimestampLayout = "20060102-150405"

// Generator produces backup names of the form "20060102-150405-1a2b3c4d".
// The timestamp keeps names readable and sortable; the random suffix keeps
// concurrent callers from colliding. Callers may still re-check the index.
type Generator struct {
	now func() time.Time
}

// New creates a Generator using the system clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// Generate returns a new backup name. No side effects.
func (g *Generator) Generate() string {
	now := g.now
	if now == nil {
		now = time.Now
	}
	return fmt.Sprintf("%s-%s", now().UTC().Format(TimestampLayout), uuid.NewString()[:8])
}
