package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/regen/internal/config"
	"github.com/kingrea/regen/internal/layer"
)

// DefinitionFile pairs a parsed layer definition with where it was declared.
// Files declaring several definitions are labelled path#N.
type DefinitionFile struct {
	Definition LayerDefinition
	Path       string
}

// RegisterLayerPlugins loads the definitions under .regen/layers and
// registers each as a layer type. It returns the registered ids.
func RegisterLayerPlugins(reg *layer.Registry, cfg *config.Config) ([]string, error) {
	if reg == nil || cfg == nil {
		return nil, nil
	}
	files, err := LoadDefinitionDir(cfg.LayersDir())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, file := range files {
		def := file.Definition
		if err := reg.Register(def.ID, def.Description, func(name string, overrides layer.Config) (layer.Layer, error) {
			return newDefinitionLayer(def, name, overrides)
		}); err != nil {
			return nil, fmt.Errorf("plugin: register %s from %s: %w", def.ID, file.Path, err)
		}
		ids = append(ids, def.ID)
	}
	return ids, nil
}

// LoadDefinitionDir reads every YAML and Go layer definition in dir in one
// pass, in file name order. A missing directory means no plugins.
//
// Layer ids must be unique across the directory. A parameter name may be
// declared by one layer type only: two layer types writing the same artifact
// parameter could never be combined in one config. State names are scoped to
// their layer record and may repeat.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", dir, err)
	}
	idx := newDefinitionIndex()
	var files []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		defs, numbered, err := loadDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		for i, def := range defs {
			source := path
			if numbered || len(defs) > 1 {
				source = fmt.Sprintf("%s#%d", path, i+1)
			}
			if err := idx.add(def, source); err != nil {
				return nil, err
			}
			files = append(files, DefinitionFile{Definition: def, Path: source})
		}
	}
	return files, nil
}

// loadDefinitionFile dispatches on extension. Go scripts always return a
// list, so their definitions are always numbered. Other files yield nothing.
func loadDefinitionFile(path string) ([]LayerDefinition, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("plugin: read %s: %w", path, err)
		}
		defs, err := decodeYAMLDefinitions(data)
		if err != nil {
			return nil, false, fmt.Errorf("plugin: %s: %w", path, err)
		}
		return defs, false, nil
	case ".go":
		defs, err := evalGoDefinitions(path)
		return defs, true, err
	default:
		return nil, false, nil
	}
}

type definitionIndex struct {
	ids    map[string]string
	params map[string]string
}

func newDefinitionIndex() *definitionIndex {
	return &definitionIndex{ids: map[string]string{}, params: map[string]string{}}
}

func (x *definitionIndex) add(def LayerDefinition, source string) error {
	if prev, ok := x.ids[def.ID]; ok {
		return fmt.Errorf("plugin: duplicate layer id %s (%s and %s)", def.ID, prev, source)
	}
	for _, p := range def.Parameters {
		if owner, ok := x.params[p.Name]; ok {
			return fmt.Errorf("plugin: %s: parameter %s is already declared by layer %s", source, p.Name, owner)
		}
	}
	x.ids[def.ID] = source
	for _, p := range def.Parameters {
		x.params[p.Name] = def.ID
	}
	return nil
}
