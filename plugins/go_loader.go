package plugins

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/regen/internal/artifact"
)

// goDefinitionFunc is the function a Go layer script exports. It returns one
// map per layer type using the same keys as the YAML schema, optionally with
// an error:
//
//	func LayerDefinitions() ([]map[string]any, error)
const goDefinitionFunc = "LayerDefinitions"

var (
	definitionKeys = []string{"id", "description", "default", "weight", "states", "parameters"}
	stateKeys      = []string{"name", "motion", "speed"}
	parameterKeys  = []string{"name", "type", "default"}
)

// evalGoDefinitions interprets a Go layer script and converts each returned
// entry into a validated, normalized LayerDefinition.
func evalGoDefinitions(path string) ([]LayerDefinition, error) {
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fn, err := i.Eval(goDefinitionFunc)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s(): %w", path, goDefinitionFunc, err)
	}
	entries, err := callDefinitionFunc(fn)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("plugin: %s: %s returned no layer definitions", path, goDefinitionFunc)
	}
	defs := make([]LayerDefinition, 0, len(entries))
	for idx, entry := range entries {
		def, err := definitionFromMap(entry)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: definition[%d]: %w", path, idx, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func callDefinitionFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFunc)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must take no arguments", goDefinitionFunc)
	}
	out := fn.Call(nil)
	switch len(out) {
	case 1:
	case 2:
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goDefinitionFunc)
	}
	return mapList(out[0].Interface())
}

// definitionFromMap builds a definition field by field. Numbers may arrive as
// any Go numeric type since scripts write untyped constants.
func definitionFromMap(raw map[string]any) (LayerDefinition, error) {
	var def LayerDefinition
	if err := checkKeys(raw, definitionKeys); err != nil {
		return def, err
	}
	var err error
	if def.ID, err = stringField(raw, "id"); err != nil {
		return def, err
	}
	if def.Description, err = stringField(raw, "description"); err != nil {
		return def, err
	}
	if def.Default, err = stringField(raw, "default"); err != nil {
		return def, err
	}
	if def.Weight, err = numberField(raw, "weight"); err != nil {
		return def, err
	}

	states, err := mapList(raw["states"])
	if err != nil {
		return def, fmt.Errorf("states: %w", err)
	}
	for idx, s := range states {
		state, err := stateFromMap(s)
		if err != nil {
			return def, fmt.Errorf("states[%d]: %w", idx, err)
		}
		def.States = append(def.States, state)
	}

	params, err := mapList(raw["parameters"])
	if err != nil {
		return def, fmt.Errorf("parameters: %w", err)
	}
	for idx, p := range params {
		param, err := parameterFromMap(p)
		if err != nil {
			return def, fmt.Errorf("parameters[%d]: %w", idx, err)
		}
		def.Parameters = append(def.Parameters, param)
	}

	if err := def.Validate(); err != nil {
		return def, err
	}
	return def.Normalized(), nil
}

func stateFromMap(raw map[string]any) (artifact.State, error) {
	var s artifact.State
	if err := checkKeys(raw, stateKeys); err != nil {
		return s, err
	}
	var err error
	if s.Name, err = stringField(raw, "name"); err != nil {
		return s, err
	}
	if s.Motion, err = stringField(raw, "motion"); err != nil {
		return s, err
	}
	if s.Speed, err = numberField(raw, "speed"); err != nil {
		return s, err
	}
	return s, nil
}

func parameterFromMap(raw map[string]any) (artifact.Parameter, error) {
	var p artifact.Parameter
	if err := checkKeys(raw, parameterKeys); err != nil {
		return p, err
	}
	var err error
	if p.Name, err = stringField(raw, "name"); err != nil {
		return p, err
	}
	typ, err := stringField(raw, "type")
	if err != nil {
		return p, err
	}
	p.Type = artifact.ParameterType(strings.ToLower(typ))
	p.Default = raw["default"]
	return p, nil
}

func checkKeys(raw map[string]any, allowed []string) error {
	for key := range raw {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown key %q", key)
		}
	}
	return nil
}

func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

func numberField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// mapList accepts []map[string]any or any slice whose elements are
// map[string]any, which is what []any literals in scripts produce.
func mapList(v any) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	if maps, ok := v.([]map[string]any); ok {
		return maps, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]map[string]any, rv.Len())
	for i := range out {
		m, ok := rv.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d] is %T, not map[string]any", i, rv.Index(i).Interface())
		}
		out[i] = m
	}
	return out, nil
}
