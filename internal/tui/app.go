// internal/tui/app.go
//
// Watch dashboard for regen. It lists every generator config with the outcome
// of its last regeneration, regenerates on watcher events or key presses, and
// shows the tail of the generation history.
//
// Regeneration runs one batch at a time. Configs that change while a batch is
// running are queued and picked up when it finishes.

package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/regen/internal/logbook"
)

const historyLines = 8

// Outcome reports the regeneration of one config.
type Outcome struct {
	Config   string
	Path     string
	Layers   int
	Created  bool
	Checksum string
	Err      error
	At       time.Time
}

// Runner performs the actual work behind the dashboard.
type Runner interface {
	// Configs lists the known config locations.
	Configs() []string
	// Regenerate runs the given configs sequentially.
	Regenerate(ctx context.Context, configs []string) []Outcome
}

// ChangedMsg tells the dashboard that configs need regeneration. The watch
// command sends it through tea.Program.Send.
type ChangedMsg struct {
	Configs []string
}

type regenFinishedMsg struct {
	outcomes []Outcome
}

type rowStatus int

const (
	rowIdle rowStatus = iota
	rowQueued
	rowRunning
	rowOK
	rowFailed
)

type row struct {
	config  string
	status  rowStatus
	outcome Outcome
}

// AppOption customizes App construction.
type AppOption func(*App)

// WithLogbook shows the tail of the generation history.
func WithLogbook(book *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = book
	}
}

// WithContext bounds regeneration runs.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the bubbletea model of the dashboard.
type App struct {
	ctx     context.Context
	runner  Runner
	logbook *logbook.Logbook
	keys    keyMap
	spinner spinner.Model

	rows      []row
	selection int
	running   bool
	pending   map[string]struct{}

	width     int
	statusMsg string
}

// NewApp builds the dashboard for runner.
func NewApp(runner Runner, opts ...AppOption) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = labelStyleRunning
	a := &App{
		ctx:       context.Background(),
		runner:    runner,
		keys:      defaultKeyMap(),
		spinner:   sp,
		pending:   map[string]struct{}{},
		statusMsg: "Watching for changes.",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.syncRows()
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case ChangedMsg:
		return a, a.enqueue(msg.Configs)
	case regenFinishedMsg:
		return a, a.finish(msg.outcomes)
	case spinner.TickMsg:
		if !a.running {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.selection > 0 {
			a.selection--
		}
	case key.Matches(msg, a.keys.Down):
		if a.selection < len(a.rows)-1 {
			a.selection++
		}
	case key.Matches(msg, a.keys.Regenerate):
		if a.selection < len(a.rows) {
			return a, a.enqueue([]string{a.rows[a.selection].config})
		}
	case key.Matches(msg, a.keys.RegenerateAll):
		return a, a.enqueue(a.runner.Configs())
	}
	return a, nil
}

func (a *App) enqueue(configs []string) tea.Cmd {
	a.syncRows()
	for _, cfg := range configs {
		a.pending[cfg] = struct{}{}
		a.ensureRow(cfg).status = rowQueued
	}
	if a.running || len(a.pending) == 0 {
		return nil
	}
	return a.startBatch()
}

func (a *App) startBatch() tea.Cmd {
	batch := make([]string, 0, len(a.pending))
	for cfg := range a.pending {
		batch = append(batch, cfg)
	}
	sort.Strings(batch)
	a.pending = map[string]struct{}{}
	for _, cfg := range batch {
		a.ensureRow(cfg).status = rowRunning
	}
	a.running = true
	a.statusMsg = fmt.Sprintf("Regenerating %d config(s)...", len(batch))
	runner, ctx := a.runner, a.ctx
	run := func() tea.Msg {
		return regenFinishedMsg{outcomes: runner.Regenerate(ctx, batch)}
	}
	return tea.Batch(a.spinner.Tick, run)
}

func (a *App) finish(outcomes []Outcome) tea.Cmd {
	a.running = false
	failed := 0
	for _, out := range outcomes {
		r := a.ensureRow(out.Config)
		r.outcome = out
		r.status = rowOK
		if out.Err != nil {
			r.status = rowFailed
			failed++
		}
	}
	a.statusMsg = fmt.Sprintf("Regenerated %d config(s), %d failed.", len(outcomes)-failed, failed)
	if len(a.pending) > 0 {
		return a.startBatch()
	}
	return nil
}

func (a *App) syncRows() {
	if a.runner == nil {
		return
	}
	for _, cfg := range a.runner.Configs() {
		a.ensureRow(cfg)
	}
}

func (a *App) ensureRow(cfg string) *row {
	for i := range a.rows {
		if a.rows[i].config == cfg {
			return &a.rows[i]
		}
	}
	a.rows = append(a.rows, row{config: cfg})
	sort.SliceStable(a.rows, func(i, j int) bool { return a.rows[i].config < a.rows[j].config })
	for i := range a.rows {
		if a.rows[i].config == cfg {
			return &a.rows[i]
		}
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	sections := []string{
		headerStyle.Render("⬡ REGEN"),
		boxStyle.Width(max(20, width-4)).Render(a.renderConfigs()),
	}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, footerStyle.Render(a.statusMsg+"\n"+a.keys.help()))
	return strings.Join(sections, "\n")
}

func (a *App) renderConfigs() string {
	title := titleStyle.Render(fmt.Sprintf("Configs (%d)", len(a.rows)))
	if len(a.rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, detailTextStyle.Render("No generator configs found."))
	}
	lines := []string{title}
	for i, r := range a.rows {
		line := fmt.Sprintf("%s %s", a.renderStatus(r.status), r.config)
		if detail := renderDetail(r); detail != "" {
			line += "  " + detailTextStyle.Render(detail)
		}
		if i == a.selection {
			line = selectedStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStatus(status rowStatus) string {
	switch status {
	case rowQueued:
		return labelStyleQueued.Render("queued ")
	case rowRunning:
		return a.spinner.View() + labelStyleRunning.Render("running")
	case rowOK:
		return labelStyleOK.Render("ok     ")
	case rowFailed:
		return labelStyleFailed.Render("failed ")
	default:
		return labelStyleDefault.Render("idle   ")
	}
}

func renderDetail(r row) string {
	out := r.outcome
	if out.Config == "" {
		return ""
	}
	if out.Err != nil {
		return out.Err.Error()
	}
	parts := []string{out.Path, fmt.Sprintf("%d layer(s)", out.Layers)}
	if out.Checksum != "" {
		parts = append(parts, out.Checksum)
	}
	if !out.At.IsZero() {
		parts = append(parts, out.At.Format("15:04:05"))
	}
	return joinDots(parts)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(historyLines)
	if len(lines) == 0 {
		return ""
	}
	head := titleStyle.Render("HISTORY")
	body := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func joinDots(parts []string) string {
	return strings.Join(parts, " · ")
}
