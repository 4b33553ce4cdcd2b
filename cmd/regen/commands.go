package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/config"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/tui"
	"github.com/kingrea/regen/internal/watch"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .regen directory with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.InitRegenDir(opts.projectDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("initialized"), mutedStyle.Render(opts.projectDir))
			return nil
		},
	}
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [config...]",
		Short: "Regenerate artifacts (every discovered config when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			locations, err := s.resolveLocations(args)
			if err != nil {
				return err
			}
			outcomes := s.Regenerate(cmd.Context(), locations)
			for _, out := range outcomes {
				printOutcome(cmd, out)
			}
			return joinOutcomeErrors(outcomes)
		},
	}
}

func printOutcome(cmd *cobra.Command, out tui.Outcome) {
	w := cmd.OutOrStdout()
	if out.Err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", errStyle.Render("failed"), out.Config, out.Err)
		return
	}
	verb := "regenerated"
	if out.Created {
		verb = "created"
	}
	checksum := out.Checksum
	if len(checksum) > 12 {
		checksum = checksum[:12]
	}
	fmt.Fprintf(w, "%s %s %s\n", okStyle.Render(verb), out.Path,
		mutedStyle.Render(fmt.Sprintf("(%s, %d layer(s), %s)", out.Config, out.Layers, checksum)))
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [config...]",
		Short: "Print the artifact path each config resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			locations, err := s.resolveLocations(args)
			if err != nil {
				return err
			}
			for _, location := range locations {
				cfg, err := s.load(location)
				if err != nil {
					return err
				}
				resolved, err := cfg.Resolve()
				if err != nil {
					return err
				}
				loc, err := s.orch.Locate(cfg)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%s -> %s %s", cfg.Location(), resolved, mutedStyle.Render("["+cfg.Path().String()+", "+loc.Status.String()+"]"))
				if loc.Path != "" && assetpath.Canonical(loc.Path) != assetpath.Canonical(resolved) {
					line += mutedStyle.Render(" located at " + loc.Path)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newRetargetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retarget <config> <artifact-path>",
		Short: "Point a config at a new artifact path, keeping its absolute or relative form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			location, err := s.projectPath(args[0])
			if err != nil {
				return err
			}
			target, err := s.projectPath(args[1])
			if err != nil {
				return err
			}
			cfg, err := s.load(location)
			if err != nil {
				return err
			}
			changed, err := cfg.Retarget(target)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("unchanged"), cfg.Path().String())
				return nil
			}
			if err := cfg.Save(s.cfg.ProjectDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("retargeted"), cfg.Location(), "->", cfg.Path().String())
			return nil
		},
	}
}

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [config...]",
		Short: "Retarget configs whose artifacts were moved or renamed",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			locations, err := s.resolveLocations(args)
			if err != nil {
				return err
			}
			for _, location := range locations {
				changed, err := s.synchronize(location)
				if err != nil {
					return fmt.Errorf("%s: %w", location, err)
				}
				if changed {
					cfg := s.configs[location]
					fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("retargeted"), location, "->", cfg.Path().String())
				}
			}
			return nil
		},
	}
}

func newLayersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List registered layer types, including plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			for _, typ := range s.registry.Types() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", okStyle.Render(typ), mutedStyle.Render(s.registry.Summary(typ)))
			}
			return nil
		},
	}
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var headless bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate configs whenever they or their watched objects change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if headless {
				return runHeadlessWatch(ctx, cmd, s)
			}
			return runDashboard(ctx, s)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "print outcomes instead of showing the dashboard")
	return cmd
}

// affected rebuilds the watch set from the configs on disk and returns the
// configs touched by changed.
func (s *session) affected(changed []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var configs []*generator.Config
	for _, location := range s.Configs() {
		cfg, err := s.load(location)
		if err != nil {
			s.logger.Warn("load config for watch set", "config", location, "err", err)
			continue
		}
		configs = append(configs, cfg)
	}
	set, errs := watch.BuildSet(s.cfg.GeneratorExtension(), configs, s.registry)
	for _, err := range errs {
		s.logger.Warn("build watch set", "err", err)
	}
	return set.Affected(changed)
}

func runHeadlessWatch(ctx context.Context, cmd *cobra.Command, s *session) error {
	w, err := watch.New(s.cfg.ProjectDir, func(changed []string) {
		for _, out := range s.Regenerate(ctx, s.affected(changed)) {
			printOutcome(cmd, out)
		}
	}, watch.WithDebounce(s.cfg.WatchDebounce()), watch.WithLogger(s.logger.Logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("watching"), mutedStyle.Render(s.cfg.ProjectDir))
	<-ctx.Done()
	w.Stop()
	return nil
}

func runDashboard(ctx context.Context, s *session) error {
	app := tui.NewApp(s, tui.WithLogbook(s.book), tui.WithContext(ctx))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	w, err := watch.New(s.cfg.ProjectDir, func(changed []string) {
		if configs := s.affected(changed); len(configs) > 0 {
			p.Send(tui.ChangedMsg{Configs: configs})
		}
	}, watch.WithDebounce(s.cfg.WatchDebounce()), watch.WithLogger(s.logger.Logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
