// cmd/regen/main.go
//
// Entry point for the regen CLI. Every command works on the project tree
// rooted at --project (the working directory by default) and keeps its state
// under .regen/.

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type rootOptions struct {
	projectDir    string
	contractCheck bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "regen",
		Short: "Regenerate layered controller artifacts from generator configs",
		Long: `regen keeps controller artifacts in sync with the generator configs that
describe them. Each config names its artifact by a stable identifier, so the
artifact can be moved or renamed without losing the link.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cwd, _ := os.Getwd()
	cmd.PersistentFlags().StringVarP(&opts.projectDir, "project", "p", cwd, "project tree root")
	cmd.PersistentFlags().BoolVar(&opts.contractCheck, "check-contracts", false, "warn when a layer does not emit exactly one layer record")

	cmd.AddCommand(
		newInitCommand(opts),
		newGenerateCommand(opts),
		newResolveCommand(opts),
		newRetargetCommand(opts),
		newSyncCommand(opts),
		newLayersCommand(opts),
		newWatchCommand(opts),
	)
	return cmd
}

func (o *rootOptions) open() (*session, error) {
	return openSession(o.projectDir, sessionOptions{contractCheck: o.contractCheck})
}
