package plugins

import (
	"fmt"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/layer"
)

const motionKind = "Motion"

// definitionLayer emits the states and parameters of a plugin definition.
type definitionLayer struct {
	layer.Base
	definition LayerDefinition
}

func newDefinitionLayer(def LayerDefinition, name string, overrides layer.Config) (*definitionLayer, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	normalized := def.Normalized()
	var err error
	if normalized.Default, err = overrides.String("default", normalized.Default); err != nil {
		return nil, err
	}
	if normalized.Weight, err = overrides.Float("weight", normalized.Weight); err != nil {
		return nil, err
	}
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return &definitionLayer{Base: layer.NewBase(name), definition: normalized}, nil
}

// Generate implements layer.Layer.
func (l *definitionLayer) Generate(ctx *layer.Context) error {
	def := l.definition
	for _, p := range def.Parameters {
		if err := ctx.Artifact.AddParameter(p); err != nil {
			return err
		}
	}
	record := artifact.Layer{Name: ctx.Name, Weight: def.Weight, DefaultState: def.Default}
	for _, s := range def.States {
		data := map[string]any{"plugin": def.ID}
		if s.Motion != "" {
			data["clip"] = s.Motion
		}
		id, err := ctx.Artifact.AddSubAsset(ctx.Name, motionKind, s.Name, data)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", def.ID, err)
		}
		s.Motion = id
		record.States = append(record.States, s)
	}
	ctx.Artifact.AddLayer(record)
	return nil
}
