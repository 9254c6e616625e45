package step

import (
	"fmt"

	"github.com/sm2x/neos-backups/internal/domain"
)

// Runner turns step configurations into runnable step instances.
type Runner struct{}

// Instantiate builds steps for the given configurations, in order. When
// subset is non-nil, only configurations whose names appear in subset are
// built, and a subset entry may override the type and options of the
// matching configuration; a subset name with no matching configuration is an
// error.
func (Runner) Instantiate(workingDir string, configs, subset []domain.StepConfig) ([]domain.Step, error) {
	selected := configs
	if subset != nil {
		selected = make([]domain.StepConfig, 0, len(subset))
		for _, want := range subset {
			found := false
			for _, cfg := range configs {
				if cfg.Name != want.Name {
					continue
				}
				merged := cfg
				if want.Type != "" {
					merged.Type = want.Type
				}
				if want.Options != nil {
					merged.Options = want.Options
				}
				selected = append(selected, merged)
				found = true
				break
			}
			if !found {
				return nil, fmt.Errorf("step %s: not configured", want.Name)
			}
		}
	}

	steps := make([]domain.Step, 0, len(selected))
	for _, cfg := range selected {
		s, err := New(cfg.Type, workingDir, cfg.Name, cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", cfg.Name, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}
