package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/regen/internal/artifact"
)

// LayerDefinition describes a declarative layer type loaded from a plugin.
//
// The struct mirrors the on-disk schema under .regen/layers/*.yaml. A plugin
// declares states and parameters once; every generator config that references
// the plugin's id receives a copy labelled with the config's layer name.
type LayerDefinition struct {
	ID          string               `json:"id" yaml:"id"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string               `json:"default,omitempty" yaml:"default,omitempty"`
	Weight      float64              `json:"weight,omitempty" yaml:"weight,omitempty"`
	States      []artifact.State     `json:"states" yaml:"states"`
	Parameters  []artifact.Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def LayerDefinition) Normalized() LayerDefinition {
	clone := LayerDefinition{
		ID:          strings.TrimSpace(def.ID),
		Description: strings.TrimSpace(def.Description),
		Default:     strings.TrimSpace(def.Default),
		Weight:      def.Weight,
	}
	if clone.Weight == 0 {
		clone.Weight = 1
	}
	if len(def.States) > 0 {
		clone.States = make([]artifact.State, len(def.States))
		for i, s := range def.States {
			s.Name = strings.TrimSpace(s.Name)
			s.Motion = strings.TrimSpace(s.Motion)
			if s.Speed == 0 {
				s.Speed = 1
			}
			clone.States[i] = s
		}
	}
	if len(def.Parameters) > 0 {
		clone.Parameters = make([]artifact.Parameter, len(def.Parameters))
		for i, p := range def.Parameters {
			p.Name = strings.TrimSpace(p.Name)
			clone.Parameters[i] = p
		}
	}
	if clone.Default == "" && len(clone.States) > 0 {
		clone.Default = clone.States[0].Name
	}
	return clone
}

// Validate ensures the plugin definition is well-formed.
func (def LayerDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if len(normalized.States) == 0 {
		return fmt.Errorf("plugin %s: at least one state is required", normalized.ID)
	}
	states := make(map[string]struct{}, len(normalized.States))
	for idx, s := range normalized.States {
		if s.Name == "" {
			return fmt.Errorf("plugin %s: states[%d].name is required", normalized.ID, idx)
		}
		if _, exists := states[s.Name]; exists {
			return fmt.Errorf("plugin %s: states[%d]: duplicate state %s", normalized.ID, idx, s.Name)
		}
		states[s.Name] = struct{}{}
	}
	if _, ok := states[normalized.Default]; !ok {
		return fmt.Errorf("plugin %s: default %s is not a declared state", normalized.ID, normalized.Default)
	}
	params := make(map[string]struct{}, len(normalized.Parameters))
	for idx, p := range normalized.Parameters {
		if p.Name == "" {
			return fmt.Errorf("plugin %s: parameters[%d].name is required", normalized.ID, idx)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("plugin %s: parameters[%d]: unknown type %q", normalized.ID, idx, p.Type)
		}
		if _, exists := params[p.Name]; exists {
			return fmt.Errorf("plugin %s: parameters[%d]: duplicate parameter %s", normalized.ID, idx, p.Name)
		}
		params[p.Name] = struct{}{}
	}
	return nil
}
