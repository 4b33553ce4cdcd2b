// Package source implements the "source" layer. It reads a YAML description of
// states and parameters from a project file and emits one layer record, the
// declared parameters, and one motion sub-asset per state. The source file is
// the layer's only watched object.
package source

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/layer"
)

const (
	layerType  = "source"
	motionKind = "Motion"
)

// Document is the on-disk shape of a source file.
type Document struct {
	Default    string               `yaml:"default,omitempty"`
	Weight     *float64             `yaml:"weight,omitempty"`
	States     []artifact.State     `yaml:"states"`
	Parameters []artifact.Parameter `yaml:"parameters,omitempty"`
}

// Layer emits content described by a source file.
type Layer struct {
	layer.Base
	file string
}

// Register installs the source layer factory.
func Register(reg *layer.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(layerType, "states and parameters read from a YAML file", func(name string, cfg layer.Config) (layer.Layer, error) {
		file, err := cfg.String("file", "")
		if err != nil {
			return nil, err
		}
		return New(name, file)
	})
}

// New constructs a source layer reading file (a project path).
func New(name, file string) (*Layer, error) {
	file = assetpath.Canonical(strings.TrimSpace(file))
	if file == "" {
		return nil, fmt.Errorf("source: file is required")
	}
	if assetpath.Escapes(file) {
		return nil, fmt.Errorf("source: file %s is outside the project", file)
	}
	l := &Layer{Base: layer.NewBase(name), file: file}
	l.Watch(file)
	return l, nil
}

// Parse decodes a source document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, fmt.Errorf("source: document is empty")
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("source: decode: %w", err)
	}
	if len(doc.States) == 0 {
		return doc, fmt.Errorf("source: at least one state is required")
	}
	for i, s := range doc.States {
		if strings.TrimSpace(s.Name) == "" {
			return doc, fmt.Errorf("source: states[%d].name is required", i)
		}
	}
	return doc, nil
}

// Generate implements layer.Layer.
func (l *Layer) Generate(ctx *layer.Context) error {
	data, err := ctx.ReadProjectFile(l.file)
	if err != nil {
		return fmt.Errorf("source: read %s: %w", l.file, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", l.file, err)
	}
	for _, p := range doc.Parameters {
		if err := ctx.Artifact.AddParameter(p); err != nil {
			return err
		}
	}
	record := artifact.Layer{Name: ctx.Name, Weight: 1, DefaultState: doc.Default}
	if doc.Weight != nil {
		record.Weight = *doc.Weight
	}
	if record.DefaultState == "" {
		record.DefaultState = doc.States[0].Name
	}
	for _, s := range doc.States {
		data := map[string]any{"source": l.file}
		if s.Motion != "" {
			data["clip"] = s.Motion
		}
		id, err := ctx.Artifact.AddSubAsset(ctx.Name, motionKind, s.Name, data)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		if s.Speed == 0 {
			s.Speed = 1
		}
		s.Motion = id
		record.States = append(record.States, s)
	}
	ctx.Artifact.AddLayer(record)
	ctx.Logger.Debug("source layer generated", "file", l.file, "states", len(doc.States))
	return nil
}
