package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetdb"
	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/config"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/layer"
	"github.com/kingrea/regen/internal/layers"
	"github.com/kingrea/regen/internal/logbook"
	"github.com/kingrea/regen/internal/logging"
	"github.com/kingrea/regen/internal/regen"
	"github.com/kingrea/regen/internal/tui"
	"github.com/kingrea/regen/plugins"
)

// session wires the project configuration, the asset index and the layer
// registry for one command invocation.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	db       *assetdb.Database
	registry *layer.Registry
	orch     *regen.Orchestrator
	book     *logbook.Logbook
	configs  map[string]*generator.Config

	// mu serializes runs started by the dashboard with watch set rebuilds.
	mu sync.Mutex
}

type sessionOptions struct {
	contractCheck bool
}

func openSession(projectDir string, opts sessionOptions) (*session, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.ProjectDir, cfg.LogLevel())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, configs: map[string]*generator.Config{}}
	if err := s.init(opts); err != nil {
		_ = logger.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) init(opts sessionOptions) error {
	db, err := assetdb.Open(s.cfg.ProjectDir, assetdb.WithLogger(s.logger.Logger))
	if err != nil {
		return err
	}
	s.db = db

	s.registry = layer.NewRegistry()
	layers.RegisterBuiltins(s.registry)
	ids, err := plugins.RegisterLayerPlugins(s.registry, s.cfg)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		s.logger.Info("registered layer plugins", "ids", ids)
	}

	s.orch = regen.New(db, s.registry,
		regen.WithLogger(s.logger.Logger),
		regen.WithContractCheck(opts.contractCheck),
	)
	book, err := logbook.New(s.cfg.HistoryPath())
	if err != nil {
		return err
	}
	s.book = book
	return nil
}

func (s *session) Close() error {
	return s.logger.Close()
}

// Configs implements tui.Runner.
func (s *session) Configs() []string {
	locations, err := generator.Discover(s.cfg.ProjectDir, s.cfg.GeneratorExtension())
	if err != nil {
		s.logger.Warn("discover configs", "err", err)
		return nil
	}
	return locations
}

// load returns the config at location. Loaded configs are kept for the life
// of the session so their artifact handles survive between runs.
func (s *session) load(location string) (*generator.Config, error) {
	if cfg, ok := s.configs[location]; ok && !cfg.Dirty() {
		fresh, err := generator.Load(s.cfg.ProjectDir, location)
		if err != nil {
			return nil, err
		}
		if sameDocument(cfg, fresh) {
			return cfg, nil
		}
	}
	cfg, err := generator.Load(s.cfg.ProjectDir, location)
	if err != nil {
		return nil, err
	}
	s.configs[cfg.Location()] = cfg
	return cfg, nil
}

func sameDocument(a, b *generator.Config) bool {
	left, errL := a.Encode()
	right, errR := b.Encode()
	return errL == nil && errR == nil && string(left) == string(right)
}

// resolveLocations expands an empty argument list to every discovered config.
func (s *session) resolveLocations(args []string) ([]string, error) {
	if len(args) > 0 {
		out := make([]string, 0, len(args))
		for _, arg := range args {
			location, err := s.projectPath(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, location)
		}
		return out, nil
	}
	locations, err := generator.Discover(s.cfg.ProjectDir, s.cfg.GeneratorExtension())
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no %s generator configs found under %s", s.cfg.GeneratorExtension(), s.cfg.ProjectDir)
	}
	return locations, nil
}

// generate regenerates one config, persists the artifact and the config, and
// records the run in the history file.
func (s *session) generate(ctx context.Context, location string) tui.Outcome {
	out := tui.Outcome{Config: location, At: time.Now()}
	cfg, err := s.load(location)
	if err != nil {
		out.Err = err
		s.book.Record(logbook.Run{Config: location, Err: err})
		return out
	}
	out.Config = cfg.Location()
	res, err := s.orch.Generate(ctx, cfg)
	if err == nil {
		err = s.persist(cfg)
	}
	if err != nil && res.Created && cfg.Dirty() {
		// The meta record already carries the new identifier.
		if saveErr := cfg.Save(s.cfg.ProjectDir); saveErr != nil {
			s.logger.Error("save config", "config", cfg.Location(), "err", saveErr)
		}
	}
	if err == nil {
		out.Checksum, err = artifact.Checksum(res.Artifact)
	}
	out.Path, out.Layers, out.Created, out.Err = res.Path, res.Layers, res.Created, err
	s.book.Record(logbook.Run{
		Config:   out.Config,
		Artifact: out.Path,
		Created:  out.Created,
		Layers:   out.Layers,
		Checksum: out.Checksum,
		Err:      err,
	})
	for _, v := range res.Violations {
		s.book.Warn("%s: layer %s: %v", out.Config, v.Layer, v.Err())
	}
	if err != nil {
		s.logger.Error("generation failed", "config", out.Config, "err", err)
	}
	return out
}

func (s *session) persist(cfg *generator.Config) error {
	written, err := s.db.SaveDirty()
	if err != nil {
		return err
	}
	for _, p := range written {
		s.logger.Debug("wrote artifact", "path", p)
	}
	if cfg.Dirty() {
		if err := cfg.Save(s.cfg.ProjectDir); err != nil {
			return err
		}
	}
	return nil
}

// Regenerate implements tui.Runner. Configs run one after another.
func (s *session) Regenerate(ctx context.Context, locations []string) []tui.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcomes := make([]tui.Outcome, 0, len(locations))
	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, tui.Outcome{Config: location, Err: err, At: time.Now()})
			continue
		}
		outcomes = append(outcomes, s.generate(ctx, location))
	}
	return outcomes
}

// synchronize retargets one config whose artifact moved.
func (s *session) synchronize(location string) (bool, error) {
	cfg, err := s.load(location)
	if err != nil {
		return false, err
	}
	changed, err := s.orch.Synchronize(cfg)
	if err != nil {
		return false, err
	}
	if changed {
		if err := cfg.Save(s.cfg.ProjectDir); err != nil {
			return false, err
		}
		s.book.Info("retargeted %s to %s", cfg.Location(), cfg.Path().String())
	}
	return changed, nil
}

// projectPath converts a command-line path to a project path. Relative
// arguments are taken relative to the project root.
func (s *session) projectPath(arg string) (string, error) {
	if !filepath.IsAbs(arg) {
		return assetpath.Canonical(filepath.ToSlash(arg)), nil
	}
	rel, err := filepath.Rel(s.cfg.ProjectDir, arg)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the project %s", arg, s.cfg.ProjectDir)
	}
	return filepath.ToSlash(rel), nil
}

func joinOutcomeErrors(outcomes []tui.Outcome) error {
	var errs []error
	for _, out := range outcomes {
		if out.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", out.Config, out.Err))
		}
	}
	return errors.Join(errs...)
}
