// Package assetpath maps generator path descriptors to project paths.
//
// Project paths are forward-slash separated and rooted at the project tree
// root (for example "Assets/Foo/Gen.cfg"). A descriptor records where an
// artifact lives in one of three ways: EMPTY derives a default name from the
// owning config, ABSOLUTE is rooted at the project tree root, and RELATIVE is
// rooted at the folder that contains the owning config.
package assetpath

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Separator is the project path separator.
const Separator = "/"

// DefaultSuffix is appended to the owner name when the descriptor is empty.
const DefaultSuffix = ".generated.controller"

// ErrNotPersisted indicates the owner has no storage location yet, so there
// is no folder to be relative to.
var ErrNotPersisted = errors.New("assetpath: owner is not persisted")

// Kind selects how a descriptor value is interpreted.
type Kind string

const (
	KindEmpty    Kind = ""
	KindAbsolute Kind = "absolute"
	KindRelative Kind = "relative"
)

// Descriptor is the tri-state artifact path stored on a generator config.
type Descriptor struct {
	Kind  Kind   `yaml:"kind,omitempty"`
	Value string `yaml:"value,omitempty"`
}

// Empty returns the descriptor that derives its path from the owner name.
func Empty() Descriptor {
	return Descriptor{}
}

// Absolute returns a descriptor rooted at the project tree root.
func Absolute(p string) Descriptor {
	return Descriptor{Kind: KindAbsolute, Value: p}
}

// Relative returns a descriptor rooted at the owner folder.
func Relative(p string) Descriptor {
	return Descriptor{Kind: KindRelative, Value: p}
}

// IsEmpty reports whether the descriptor derives its path from the owner.
func (d Descriptor) IsEmpty() bool {
	return d.Kind == KindEmpty
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindAbsolute:
		return "absolute:" + d.Value
	case KindRelative:
		return "relative:" + d.Value
	default:
		return "empty"
	}
}

// Validate rejects unknown kinds and non-empty descriptors without a value.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindEmpty:
		return nil
	case KindAbsolute, KindRelative:
		if strings.TrimSpace(d.Value) == "" {
			return fmt.Errorf("assetpath: %s descriptor requires a value", d.Kind)
		}
		return nil
	default:
		return fmt.Errorf("assetpath: unknown descriptor kind %q", d.Kind)
	}
}

// OwnerFolder returns the folder containing location, always ending in the
// separator. An empty location fails with ErrNotPersisted.
func OwnerFolder(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ErrNotPersisted
	}
	dir := path.Dir(location)
	if dir == "." || dir == Separator {
		return "", nil
	}
	return dir + Separator, nil
}

// OwnerName returns the base name of location without its last extension.
func OwnerName(location string) string {
	base := path.Base(strings.TrimSpace(location))
	if base == "." || base == Separator {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Canonical cleans a project path for comparison and disk access. Resolve
// never applies it; callers do when they need a normalized form.
func Canonical(p string) string {
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(p), Separator)
}

// Escapes reports whether a canonical project path climbs above the project
// tree root.
func Escapes(canonical string) bool {
	return canonical == ".." || strings.HasPrefix(canonical, ".."+Separator)
}
