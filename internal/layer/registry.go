package layer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kingrea/regen/internal/generator"
)

// Config represents layer-specific configuration (opaque to the runtime).
type Config map[string]any

// Factory constructs a layer named name with the provided configuration.
type Factory func(name string, cfg Config) (Layer, error)

// Registry maintains known layer factories keyed by type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	summaries map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}, summaries: map[string]string{}}
}

// Register installs a layer factory. Returns an error if the type already exists.
func (r *Registry) Register(typ string, summary string, factory Factory) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return fmt.Errorf("layer: type is required")
	}
	if factory == nil {
		return fmt.Errorf("layer: factory is required for %s", typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("layer: %s already registered", typ)
	}
	r.factories[typ] = factory
	r.summaries[typ] = strings.TrimSpace(summary)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(typ string, summary string, factory Factory) {
	if err := r.Register(typ, summary, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a layer by type.
func (r *Registry) Resolve(typ, name string, cfg Config) (Layer, error) {
	r.mu.RLock()
	factory, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("layer: unknown type %s", typ)
	}
	if strings.TrimSpace(name) == "" {
		name = typ
	}
	l, err := factory(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", name, err)
	}
	if l == nil {
		return nil, fmt.Errorf("layer %s: factory returned nil", name)
	}
	return l, nil
}

// Build resolves every declared layer in order.
func (r *Registry) Build(refs []generator.LayerRef) ([]Layer, error) {
	layers := make([]Layer, 0, len(refs))
	for i, ref := range refs {
		l, err := r.Resolve(strings.TrimSpace(ref.Type), ref.DisplayName(), Config(ref.Config))
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// Types returns a sorted list of registered layer types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Summary returns the one-line description registered with typ.
func (r *Registry) Summary(typ string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summaries[typ]
}
