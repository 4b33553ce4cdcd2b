package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseDefinitionYAML decodes a payload holding exactly one layer definition.
func ParseDefinitionYAML(data []byte) (LayerDefinition, error) {
	defs, err := decodeYAMLDefinitions(data)
	if err != nil {
		return LayerDefinition{}, err
	}
	if len(defs) != 1 {
		return LayerDefinition{}, fmt.Errorf("plugin: expected one layer definition, found %d", len(defs))
	}
	return defs[0], nil
}

// decodeYAMLDefinitions reads every document of a layer file. Several layer
// types may share a file when separated by "---". Unknown keys are rejected so
// a misspelled state field does not silently fall back to its default.
func decodeYAMLDefinitions(data []byte) ([]LayerDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("plugin: definition payload is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var defs []LayerDefinition
	for {
		var def LayerDefinition
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("plugin: decode definition %d: %w", len(defs)+1, err)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, def.Normalized())
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("plugin: no layer definitions found")
	}
	return defs, nil
}
