// Package toggle implements the "toggle" layer: a bool parameter driving an
// Off/On pair of states, each backed by a motion sub-asset.
package toggle

import (
	"fmt"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/layer"
)

const (
	layerType  = "toggle"
	motionKind = "Motion"
	stateOff   = "Off"
	stateOn    = "On"
)

// Layer drives an Off/On state pair from a bool parameter.
type Layer struct {
	layer.Base
	parameter string
	enabled   bool
	weight    float64
}

// Register installs the toggle layer factory.
func Register(reg *layer.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(layerType, "bool parameter with Off/On states", func(name string, cfg layer.Config) (layer.Layer, error) {
		param, err := cfg.String("parameter", name)
		if err != nil {
			return nil, err
		}
		enabled, err := cfg.Bool("default", false)
		if err != nil {
			return nil, err
		}
		weight, err := cfg.Float("weight", 1)
		if err != nil {
			return nil, err
		}
		return New(name, param, enabled, weight), nil
	})
}

// New constructs a toggle layer. An empty parameter name defaults to the layer
// name.
func New(name, parameter string, enabled bool, weight float64) *Layer {
	if parameter == "" {
		parameter = name
	}
	return &Layer{Base: layer.NewBase(name), parameter: parameter, enabled: enabled, weight: weight}
}

// Generate implements layer.Layer.
func (l *Layer) Generate(ctx *layer.Context) error {
	if err := ctx.Artifact.AddParameter(artifact.Parameter{
		Name:    l.parameter,
		Type:    artifact.ParameterBool,
		Default: l.enabled,
	}); err != nil {
		return err
	}
	def := stateOff
	if l.enabled {
		def = stateOn
	}
	record := artifact.Layer{Name: ctx.Name, Weight: l.weight, DefaultState: def}
	for _, state := range []string{stateOff, stateOn} {
		id, err := ctx.Artifact.AddSubAsset(ctx.Name, motionKind, state, map[string]any{
			"parameter": l.parameter,
			"value":     state == stateOn,
		})
		if err != nil {
			return fmt.Errorf("toggle: %w", err)
		}
		record.States = append(record.States, artifact.State{Name: state, Motion: id, Speed: 1})
	}
	ctx.Artifact.AddLayer(record)
	ctx.Logger.Debug("toggle layer generated", "parameter", l.parameter)
	return nil
}
