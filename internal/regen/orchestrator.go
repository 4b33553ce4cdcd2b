package regen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/contracts"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/layer"
)

// Result summarizes one successful regeneration.
type Result struct {
	Path       string
	Created    bool
	Layers     int
	Parameters int
	SubAssets  int
	Artifact   *artifact.Artifact
	Violations []*contracts.Report
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithContractCheck validates every layer contribution and logs violations as
// warnings. Violations never fail a run.
func WithContractCheck(enabled bool) Option {
	return func(o *Orchestrator) {
		o.contractCheck = enabled
	}
}

// Orchestrator drives regeneration against a host index.
type Orchestrator struct {
	index         Index
	registry      *layer.Registry
	logger        *slog.Logger
	contractCheck bool
}

// New returns an orchestrator that builds layers from registry.
func New(index Index, registry *layer.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		index:    index,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Generate rebuilds the artifact named by cfg from scratch. The artifact is
// created on first use; an existing one is cleared of layers, parameters and
// sub-assets before the layers run in declaration order. A failing layer
// aborts the run and leaves the partial content in memory.
func (o *Orchestrator) Generate(ctx context.Context, cfg *generator.Config) (Result, error) {
	if cfg.Location() == "" {
		return Result{}, ErrNotPersisted
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	target, err := cfg.Resolve()
	if err != nil {
		return Result{}, err
	}
	layers, err := o.registry.Build(cfg.Layers())
	if err != nil {
		return Result{}, fmt.Errorf("regen: %s: %w", cfg.Location(), err)
	}

	loc, err := o.Locate(cfg)
	if err != nil {
		return Result{}, err
	}
	var handle *artifact.Artifact
	created := false
	switch loc.Status {
	case WrongType:
		return Result{}, fmt.Errorf("%w: %s is %s", ErrWrongAssetType, loc.Path, loc.Kind)
	case NotFound:
		handle, err = o.CreateAt(cfg, assetpath.Canonical(target))
		if err != nil {
			return Result{}, err
		}
		created = true
	case Found:
		handle = loc.Handle
		if err := o.clear(handle); err != nil {
			return Result{}, err
		}
	}

	res := Result{Path: handle.AssetPath(), Created: created, Artifact: handle}
	for _, l := range layers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		before := contracts.Take(handle)
		lctx := layer.NewContext(l.Name(), handle, o.index.Root(), o.logger)
		if err := l.Generate(lctx); err != nil {
			return res, fmt.Errorf("regen: layer %q: %w", l.Name(), err)
		}
		if o.contractCheck {
			if report := contracts.Check(l.Name(), before, handle); !report.IsValid() {
				o.logger.Warn("layer contract violated", "layer", l.Name(), "path", res.Path, "err", report.Err())
				res.Violations = append(res.Violations, report)
			}
		}
	}

	o.index.MarkDirty(handle)
	res.Layers = len(handle.Layers)
	res.Parameters = len(handle.Parameters)
	res.SubAssets = len(handle.SubAssets)
	o.logger.Info("regenerated artifact", "config", cfg.Location(), "path", res.Path, "layers", res.Layers, "created", created)
	return res, nil
}

func (o *Orchestrator) clear(handle *artifact.Artifact) error {
	handle.Reset()
	objects, err := o.index.ListCoLocatedObjects(handle.AssetPath())
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if obj.ObjectID() == artifact.RootID {
			continue
		}
		if err := o.index.Destroy(obj); err != nil {
			return err
		}
	}
	return nil
}
