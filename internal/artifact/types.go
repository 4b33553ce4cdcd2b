// Package artifact defines the generated controller document and its
// companion metadata record. An artifact is regenerated in place: its layers,
// parameters and sub-assets are rebuilt on every run while its identity (the
// identifier stored in the companion record) stays fixed.

package artifact

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// Kind is the document kind written into every controller artifact.
const Kind = "Controller"

// RootID is the object ID of the artifact root among its co-located objects.
const RootID = "root"

// ParameterType enumerates the supported parameter value types.
type ParameterType string

const (
	ParameterFloat   ParameterType = "float"
	ParameterInt     ParameterType = "int"
	ParameterBool    ParameterType = "bool"
	ParameterTrigger ParameterType = "trigger"
)

// Valid reports whether t is a known parameter type.
func (t ParameterType) Valid() bool {
	switch t {
	case ParameterFloat, ParameterInt, ParameterBool, ParameterTrigger:
		return true
	default:
		return false
	}
}

// State is a single node inside a layer.
type State struct {
	Name   string  `yaml:"name"`
	Motion string  `yaml:"motion,omitempty"`
	Speed  float64 `yaml:"speed,omitempty"`
}

// Layer is one ordered slice of controller content, emitted by one generator
// layer.
type Layer struct {
	Name         string  `yaml:"name"`
	Weight       float64 `yaml:"weight"`
	DefaultState string  `yaml:"defaultState,omitempty"`
	States       []State `yaml:"states"`
}

// Parameter is a named controller parameter.
type Parameter struct {
	Name    string        `yaml:"name"`
	Type    ParameterType `yaml:"type"`
	Default any           `yaml:"default,omitempty"`
}

// SubAsset is an auxiliary object stored inside the artifact file. Anything
// other than the root is considered stale at the start of a regeneration.
type SubAsset struct {
	ID    string         `yaml:"id"`
	Kind  string         `yaml:"kind"`
	Name  string         `yaml:"name"`
	Owner string         `yaml:"owner,omitempty"`
	Data  map[string]any `yaml:"data,omitempty"`

	path string
}

// ObjectKind implements assetdb.Object.
func (s *SubAsset) ObjectKind() string { return s.Kind }

// ObjectID implements assetdb.Object.
func (s *SubAsset) ObjectID() string { return s.ID }

// AssetPath implements assetdb.Object.
func (s *SubAsset) AssetPath() string { return s.path }

// Artifact is the in-memory form of a controller document.
type Artifact struct {
	Kind       string      `yaml:"kind"`
	Layers     []Layer     `yaml:"layers"`
	Parameters []Parameter `yaml:"parameters"`
	SubAssets  []SubAsset  `yaml:"subAssets,omitempty"`

	path string
}

// New returns an empty artifact bound to a project path.
func New(path string) *Artifact {
	return &Artifact{Kind: Kind, Layers: []Layer{}, Parameters: []Parameter{}, path: path}
}

// ObjectKind implements assetdb.Object.
func (a *Artifact) ObjectKind() string { return a.Kind }

// ObjectID implements assetdb.Object.
func (a *Artifact) ObjectID() string { return RootID }

// AssetPath implements assetdb.Object.
func (a *Artifact) AssetPath() string { return a.path }

// Bind records the project path the artifact was loaded from.
func (a *Artifact) Bind(path string) {
	a.path = path
	for i := range a.SubAssets {
		a.SubAssets[i].path = path
	}
}

// Valid reports whether the handle still refers to a loaded artifact.
func (a *Artifact) Valid() bool {
	return a != nil && a.path != "" && a.Kind == Kind
}

// Reset clears generated layers and parameters. Sub-assets are destroyed
// separately through the host index.
func (a *Artifact) Reset() {
	a.Layers = []Layer{}
	a.Parameters = []Parameter{}
}

// AddLayer appends a layer record.
func (a *Artifact) AddLayer(layer Layer) {
	if layer.States == nil {
		layer.States = []State{}
	}
	a.Layers = append(a.Layers, layer)
}

// AddParameter appends a parameter. Duplicate names are rejected because the
// controller addresses parameters by name.
func (a *Artifact) AddParameter(param Parameter) error {
	name := strings.TrimSpace(param.Name)
	if name == "" {
		return fmt.Errorf("artifact: parameter name is required")
	}
	if !param.Type.Valid() {
		return fmt.Errorf("artifact: parameter %s has unknown type %q", name, param.Type)
	}
	if _, ok := a.Parameter(name); ok {
		return fmt.Errorf("artifact: parameter %s already declared", name)
	}
	param.Name = name
	a.Parameters = append(a.Parameters, param)
	return nil
}

// Parameter looks up a parameter by name.
func (a *Artifact) Parameter(name string) (Parameter, bool) {
	for _, p := range a.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// AddSubAsset attaches an auxiliary object and returns its ID. IDs are derived
// from owner, kind and name so that regeneration reproduces them.
func (a *Artifact) AddSubAsset(owner, kind, name string, data map[string]any) (string, error) {
	if strings.TrimSpace(kind) == "" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("artifact: sub-asset kind and name are required")
	}
	id := SubAssetID(owner, kind, name)
	for _, existing := range a.SubAssets {
		if existing.ID == id {
			return "", fmt.Errorf("artifact: sub-asset %s/%s already attached by %s", kind, name, owner)
		}
	}
	a.SubAssets = append(a.SubAssets, SubAsset{
		ID:    id,
		Kind:  kind,
		Name:  name,
		Owner: owner,
		Data:  data,
		path:  a.path,
	})
	return id, nil
}

// SubAssetObjects returns pointers to the current sub-assets.
func (a *Artifact) SubAssetObjects() []*SubAsset {
	out := make([]*SubAsset, 0, len(a.SubAssets))
	for i := range a.SubAssets {
		sub := a.SubAssets[i]
		sub.path = a.path
		out = append(out, &sub)
	}
	return out
}

// RemoveSubAsset drops the sub-asset with the given ID. It reports whether
// anything was removed.
func (a *Artifact) RemoveSubAsset(id string) bool {
	for i, sub := range a.SubAssets {
		if sub.ID == id {
			a.SubAssets = append(a.SubAssets[:i], a.SubAssets[i+1:]...)
			return true
		}
	}
	return false
}

// SubAssetID derives a stable 16-byte hex identifier for a sub-asset.
func SubAssetID(owner, kind, name string) string {
	sum := blake3.Sum256([]byte(owner + "\x00" + kind + "\x00" + name))
	return hex.EncodeToString(sum[:16])
}
