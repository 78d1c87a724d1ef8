package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/outremer-kg/recon-cli/internal/adapters/driving/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review [doc-id]",
	Short: "Review a document's matches interactively",
	Long: `Launches the interactive review screen for one document.

Controls:
  ↑/k, ↓/j - Move between mentions
  ←/h, →/l - Move between candidates
  a, r, u  - Accept / reject / mark uncertain
  x e d g  - Toggle entity flags on the mention
  p        - Pull community decisions
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if reviewService == nil || bundleStore == nil {
		return errors.New("review service not configured")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("review requires a terminal; use 'outremer docs show' in scripts")
	}

	// Panic recovery keeps stack traces visible outside the alt screen.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in review screen: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Review:  reviewService,
		Bundles: bundleStore,
	}, args[0])
	if err != nil {
		return fmt.Errorf("failed to create review screen: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("review screen error: %w", err)
	}
	return nil
}
