package regen

import (
	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/generator"
)

// Synchronize updates the config's path descriptor when its artifact was moved
// or renamed outside the tool. It reports whether the descriptor changed.
func (o *Orchestrator) Synchronize(cfg *generator.Config) (bool, error) {
	if cfg.Identifier() == "" {
		return false, nil
	}
	if cfg.Location() == "" {
		return false, ErrNotPersisted
	}
	actual, ok := o.index.FindPathByIdentifier(cfg.Identifier())
	if !ok {
		return false, nil
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return false, err
	}
	if assetpath.Canonical(resolved) == assetpath.Canonical(actual) {
		return false, nil
	}
	changed, err := cfg.Retarget(actual)
	if err != nil {
		return false, err
	}
	if changed {
		o.logger.Info("retargeted config", "config", cfg.Location(), "from", resolved, "to", actual, "kind", string(cfg.Path().Kind))
	}
	return changed, nil
}
