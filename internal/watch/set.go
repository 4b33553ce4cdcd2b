// Package watch observes the project tree and reports which generator configs
// need regeneration. A config depends on its own file and on every object its
// layers declare through WatchingObjects. Watched files are never written.
package watch

import (
	"sort"
	"strings"

	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/layer"
)

// Set maps watched project paths to the configs that depend on them.
type Set struct {
	extension  string
	dependents map[string]map[string]struct{}
}

// NewSet returns an empty set. Changed files with extension are treated as
// configs even when they are not yet part of the set.
func NewSet(extension string) *Set {
	return &Set{
		extension:  strings.ToLower(extension),
		dependents: map[string]map[string]struct{}{},
	}
}

// BuildSet collects the watch set of every config. Configs whose layers cannot
// be built still watch their own file so that a fix retriggers them.
func BuildSet(extension string, configs []*generator.Config, reg *layer.Registry) (*Set, []error) {
	set := NewSet(extension)
	var errs []error
	for _, cfg := range configs {
		set.Add(cfg.Location(), cfg.Location())
		layers, err := reg.Build(cfg.Layers())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, l := range layers {
			for _, p := range l.WatchingObjects() {
				set.Add(p, cfg.Location())
			}
		}
	}
	return set, errs
}

// Add records that config depends on projectPath.
func (s *Set) Add(projectPath, config string) {
	key := assetpath.Canonical(projectPath)
	if key == "" || config == "" || assetpath.Escapes(key) {
		return
	}
	deps, ok := s.dependents[key]
	if !ok {
		deps = map[string]struct{}{}
		s.dependents[key] = deps
	}
	deps[config] = struct{}{}
}

// Paths returns every watched project path, sorted.
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.dependents))
	for p := range s.dependents {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Affected returns the configs that depend on any of the changed paths,
// sorted and without duplicates.
func (s *Set) Affected(changed []string) []string {
	seen := map[string]struct{}{}
	for _, p := range changed {
		key := assetpath.Canonical(p)
		for cfg := range s.dependents[key] {
			seen[cfg] = struct{}{}
		}
		if s.extension != "" && strings.HasSuffix(strings.ToLower(key), s.extension) {
			seen[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cfg := range seen {
		out = append(out, cfg)
	}
	sort.Strings(out)
	return out
}
