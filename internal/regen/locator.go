package regen

import (
	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/generator"
)

// Status classifies the outcome of Locate.
type Status int

const (
	NotFound Status = iota
	Found
	WrongType
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case WrongType:
		return "wrong-type"
	default:
		return "not-found"
	}
}

// Location is the tagged result of Locate. Handle is set only when Found;
// Path and Kind describe whatever the identifier resolved to.
type Location struct {
	Status Status
	Handle *artifact.Artifact
	Path   string
	Kind   string
}

// Locate finds the artifact registered under the config's identifier. A valid
// cached handle short-circuits the index lookup.
func (o *Orchestrator) Locate(cfg *generator.Config) (Location, error) {
	if h := cfg.Handle(); h.Valid() && o.index.Contains(h) {
		return Location{Status: Found, Handle: h, Path: h.AssetPath(), Kind: h.ObjectKind()}, nil
	}
	cfg.InvalidateHandle()

	id := cfg.Identifier()
	if id == "" {
		return Location{Status: NotFound}, nil
	}
	p, ok := o.index.FindPathByIdentifier(id)
	if !ok {
		return Location{Status: NotFound}, nil
	}
	obj, err := o.index.LoadByPath(p)
	if err != nil {
		return Location{}, err
	}
	if obj == nil {
		o.logger.Debug("identifier registered without a file", "id", id, "path", p)
		return Location{Status: NotFound, Path: p}, nil
	}
	a, ok := obj.(*artifact.Artifact)
	if !ok {
		return Location{Status: WrongType, Path: p, Kind: obj.ObjectKind()}, nil
	}
	cfg.CacheHandle(a)
	return Location{Status: Found, Handle: a, Path: p, Kind: a.ObjectKind()}, nil
}
