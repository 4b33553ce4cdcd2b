package states

import (
	"fmt"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/layer"
)

const layerType = "states"

// Layer emits a single layer record with inline states.
type Layer struct {
	layer.Base
	states       []string
	defaultState string
	weight       float64
}

// Register installs the states layer factory.
func Register(reg *layer.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(layerType, "inline list of states as one layer", func(name string, cfg layer.Config) (layer.Layer, error) {
		return FromConfig(name, cfg)
	})
}

// New constructs the layer directly.
func New(name string, states []string, defaultState string, weight float64) (*Layer, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("states: at least one state is required")
	}
	seen := map[string]struct{}{}
	for i, s := range states {
		if s == "" {
			return nil, fmt.Errorf("states: states[%d] is empty", i)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("states: duplicate state %q", s)
		}
		seen[s] = struct{}{}
	}
	if defaultState == "" {
		defaultState = states[0]
	}
	if _, ok := seen[defaultState]; !ok {
		return nil, fmt.Errorf("states: default %q is not a declared state", defaultState)
	}
	return &Layer{
		Base:         layer.NewBase(name),
		states:       append([]string{}, states...),
		defaultState: defaultState,
		weight:       weight,
	}, nil
}

// FromConfig parses the generator config options.
func FromConfig(name string, cfg layer.Config) (*Layer, error) {
	list, err := cfg.Strings("states")
	if err != nil {
		return nil, err
	}
	def, err := cfg.String("default", "")
	if err != nil {
		return nil, err
	}
	weight, err := cfg.Float("weight", 1)
	if err != nil {
		return nil, err
	}
	return New(name, list, def, weight)
}

// Generate implements layer.Layer.
func (l *Layer) Generate(ctx *layer.Context) error {
	record := artifact.Layer{
		Name:         ctx.Name,
		Weight:       l.weight,
		DefaultState: l.defaultState,
		States:       make([]artifact.State, 0, len(l.states)),
	}
	for _, s := range l.states {
		record.States = append(record.States, artifact.State{Name: s, Speed: 1})
	}
	ctx.Artifact.AddLayer(record)
	return nil
}
