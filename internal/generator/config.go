// Package generator models the user-authored generator config: a stable
// identifier naming one artifact, a path descriptor locating it, and the
// ordered list of layers that populate it.
package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
)

// LayerRef declares one generator layer by registered type.
type LayerRef struct {
	Type   string         `yaml:"type"`
	Name   string         `yaml:"name,omitempty"`
	Config map[string]any `yaml:"config,omitempty"`
}

// DisplayName returns the layer name, falling back to its type.
func (r LayerRef) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return strings.TrimSpace(r.Type)
}

// document is the persisted shape of a Config.
type document struct {
	Identifier string                `yaml:"identifier,omitempty"`
	Path       *assetpath.Descriptor `yaml:"path,omitempty"`
	Layers     []LayerRef            `yaml:"layers"`
}

// Config is a generator config loaded from (or destined for) a project path.
type Config struct {
	identifier string
	path       assetpath.Descriptor
	layers     []LayerRef

	location string
	dirty    bool
	handle   *artifact.Artifact
}

// New returns an unpersisted config. Call SetLocation before resolving it.
func New(layers ...LayerRef) *Config {
	return &Config{layers: append([]LayerRef{}, layers...)}
}

// NewIdentifier returns a fresh identifier in normalized form.
func NewIdentifier() string {
	return artifact.NormalizeGUID(uuid.NewString())
}

// Identifier returns the stable identifier, or "" before one is generated.
func (c *Config) Identifier() string { return c.identifier }

// Path returns the path descriptor.
func (c *Config) Path() assetpath.Descriptor { return c.path }

// Layers returns a copy of the declared layers.
func (c *Config) Layers() []LayerRef { return append([]LayerRef{}, c.layers...) }

// Location returns the project path the config is stored at.
func (c *Config) Location() string { return c.location }

// Dirty reports whether the config has unsaved changes.
func (c *Config) Dirty() bool { return c.dirty }

// MarkDirty flags the config for saving.
func (c *Config) MarkDirty() { c.dirty = true }

// Handle returns the cached artifact handle, if any.
func (c *Config) Handle() *artifact.Artifact { return c.handle }

// CacheHandle remembers the located artifact.
func (c *Config) CacheHandle(a *artifact.Artifact) { c.handle = a }

// InvalidateHandle drops the cached artifact handle.
func (c *Config) InvalidateHandle() { c.handle = nil }

// InitializeDefaults prepares a freshly deserialized config: it generates the
// identifier when empty and defaults a nil layer list. It reports whether the
// config changed.
func (c *Config) InitializeDefaults() bool {
	changed := false
	if c.identifier == "" {
		_ = c.SetIdentifier(NewIdentifier())
		changed = true
	}
	if c.layers == nil {
		c.layers = []LayerRef{}
		changed = true
	}
	return changed
}

// EnsureIdentifier generates an identifier if none exists yet and returns it.
// A non-empty identifier is never replaced.
func (c *Config) EnsureIdentifier() string {
	if c.identifier == "" {
		_ = c.SetIdentifier(NewIdentifier())
	}
	return c.identifier
}

// SetIdentifier replaces an empty identifier. Changing a non-empty identifier
// is refused because it names one artifact permanently.
func (c *Config) SetIdentifier(id string) error {
	id = strings.TrimSpace(id)
	if c.identifier != "" && c.identifier != id {
		return fmt.Errorf("generator: identifier %s is immutable", c.identifier)
	}
	if c.identifier == id {
		return nil
	}
	c.identifier = id
	c.handle = nil
	c.dirty = true
	return nil
}

// SetPath replaces the path descriptor.
func (c *Config) SetPath(d assetpath.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d == c.path {
		return nil
	}
	c.path = d
	c.handle = nil
	c.dirty = true
	return nil
}

// SetLocation records where the config is stored. Moving a config changes
// what RELATIVE and EMPTY descriptors resolve to, so the handle is dropped.
func (c *Config) SetLocation(location string) {
	location = assetpath.Canonical(filepath.ToSlash(strings.TrimSpace(location)))
	if location == c.location {
		return
	}
	c.location = location
	c.handle = nil
}

// AddLayer appends a layer declaration.
func (c *Config) AddLayer(ref LayerRef) {
	c.layers = append(c.layers, ref)
	c.dirty = true
}

// OwnerFolder returns the folder containing the config.
func (c *Config) OwnerFolder() (string, error) {
	return assetpath.OwnerFolder(c.location)
}

// OwnerName returns the config name used for EMPTY descriptors.
func (c *Config) OwnerName() string {
	return assetpath.OwnerName(c.location)
}

// Resolve returns the artifact path described by the config.
func (c *Config) Resolve() (string, error) {
	return assetpath.ResolveLocation(c.location, c.path)
}

// Retarget rewrites the path descriptor so it resolves to newCanonicalPath,
// keeping absolute or relative intent. It reports whether the descriptor
// changed.
func (c *Config) Retarget(newCanonicalPath string) (bool, error) {
	folder, err := c.OwnerFolder()
	if err != nil {
		return false, err
	}
	target := assetpath.Canonical(filepath.ToSlash(strings.TrimSpace(newCanonicalPath)))
	switch {
	case target == "" || target == "." || target == assetpath.Canonical(folder):
		return false, fmt.Errorf("generator: retarget %s: %q names the config folder, not an artifact", c.location, newCanonicalPath)
	case assetpath.Escapes(target):
		return false, fmt.Errorf("generator: retarget %s: %q is outside the project", c.location, newCanonicalPath)
	}
	next := assetpath.Rewrite(folder, c.OwnerName(), c.path, target)
	if next == c.path {
		return false, nil
	}
	if err := next.Validate(); err != nil {
		return false, fmt.Errorf("generator: retarget %s: %w", c.location, err)
	}
	c.path = next
	c.handle = nil
	c.dirty = true
	return true, nil
}

// Decode parses a config document stored at location.
func Decode(location string, data []byte) (*Config, error) {
	var doc document
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("generator: parse %s: %w", location, err)
		}
	}
	c := &Config{
		identifier: strings.TrimSpace(doc.Identifier),
		layers:     doc.Layers,
	}
	if doc.Path != nil {
		if err := doc.Path.Validate(); err != nil {
			return nil, fmt.Errorf("generator: %s: %w", location, err)
		}
		c.path = *doc.Path
	}
	for i, ref := range c.layers {
		if strings.TrimSpace(ref.Type) == "" {
			return nil, fmt.Errorf("generator: %s: layers[%d]: type is required", location, i)
		}
	}
	c.SetLocation(location)
	return c, nil
}

// Encode renders the config document.
func (c *Config) Encode() ([]byte, error) {
	doc := document{Identifier: c.identifier, Layers: c.layers}
	if doc.Layers == nil {
		doc.Layers = []LayerRef{}
	}
	if !c.path.IsEmpty() {
		d := c.path
		doc.Path = &d
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("generator: encode %s: %w", c.location, err)
	}
	return data, nil
}

// Load reads the config stored at a project path under projectDir.
func Load(projectDir, location string) (*Config, error) {
	location = assetpath.Canonical(filepath.ToSlash(location))
	data, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(location)))
	if err != nil {
		return nil, fmt.Errorf("generator: read %s: %w", location, err)
	}
	return Decode(location, data)
}

// Save writes the config back to its location and clears the dirty flag.
func (c *Config) Save(projectDir string) error {
	if c.location == "" {
		return assetpath.ErrNotPersisted
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	osPath := filepath.Join(projectDir, filepath.FromSlash(c.location))
	if err := os.MkdirAll(filepath.Dir(osPath), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir for %s: %w", c.location, err)
	}
	if err := os.WriteFile(osPath, data, 0o644); err != nil {
		return fmt.Errorf("generator: write %s: %w", c.location, err)
	}
	c.dirty = false
	return nil
}
