package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for vecdocs.

Type a query and press Enter to rank the collection against it. A query
starting with "[" is read as a JSON embedding array; anything else is
embedded by the configured provider. Tab browses the stored documents.

Controls:
  Enter    - Search / Open document
  ↑/k, ↓/j - Navigate results
  ←/h, →/l - Previous / next page
  /        - New search
  Tab      - Browse documents
  r        - Refresh
  Esc      - Back
  Ctrl+C   - Quit`,
	Annotations: map[string]string{annotationServices: servicesLongLived},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("TUI crashed")
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Search:   searchService,
		Document: documentService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	// Pick up ingests made by other processes while the UI is open.
	startWatcher(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
