package regen

import (
	"fmt"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/generator"
)

// CreateAt writes a bootstrap artifact at canonicalPath, registers it under the
// config's identifier (generating one if needed) and loads it back.
func (o *Orchestrator) CreateAt(cfg *generator.Config, canonicalPath string) (*artifact.Artifact, error) {
	canonicalPath = assetpath.Canonical(canonicalPath)
	id := cfg.EnsureIdentifier()

	if o.index.Exists(canonicalPath) {
		if owner, ok := o.index.IdentifierAtPath(canonicalPath); ok && owner != artifact.NormalizeGUID(id) {
			return nil, fmt.Errorf("%w: %s is registered as %s", ErrPathOccupied, canonicalPath, owner)
		}
	}

	meta, err := artifact.EncodeMeta(id)
	if err != nil {
		return nil, err
	}
	if err := o.index.WriteFile(canonicalPath, []byte(artifact.BootstrapTemplate)); err != nil {
		return nil, err
	}
	if err := o.index.WriteFile(artifact.MetaPath(canonicalPath), meta); err != nil {
		return nil, err
	}
	if err := o.index.Refresh(); err != nil {
		return nil, err
	}

	obj, err := o.index.LoadByPath(canonicalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCreateLoadFailed, canonicalPath, err)
	}
	a, ok := obj.(*artifact.Artifact)
	if !ok || a == nil {
		return nil, fmt.Errorf("%w: %s", ErrCreateLoadFailed, canonicalPath)
	}
	cfg.CacheHandle(a)
	o.logger.Info("created artifact", "path", canonicalPath, "id", id)
	return a, nil
}
