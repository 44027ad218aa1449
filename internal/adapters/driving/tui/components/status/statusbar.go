// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// State represents the current activity shown on the left of the bar.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar shows the activity state, corpus statistics and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	hints   []key.Binding
	state   State
	message string
	stats   *domain.StatsResponse
	count   int
	elapsed time.Duration
	width   int
}

// NewBar creates a status bar showing the given hints.
func NewBar(s *styles.Styles, hints []key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Bar{
		styles: s,
		hints:  hints,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	if corpus := b.renderStats(); corpus != "" {
		left += b.styles.Muted.Render("  •  ") + corpus
	}
	right := b.styles.Muted.Render(keymap.FormatHelp(b.hints, " | "))

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateSearching:
		return b.styles.Muted.Render("Searching...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		return b.styles.Normal.Render(fmt.Sprintf("%d results in %s", b.count, formatElapsed(b.elapsed)))
	case StateReady:
	}
	if b.message != "" {
		return b.styles.Normal.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderStats() string {
	if b.stats == nil {
		return ""
	}
	s := b.stats.Stats
	parts := []string{fmt.Sprintf("%d docs", s.TotalDocuments)}
	if b.stats.Dimensions > 0 {
		parts = append(parts, fmt.Sprintf("%d dims", b.stats.Dimensions))
	}
	if s.TotalDocuments > 0 {
		parts = append(parts, fmt.Sprintf("avg %.0f chars", s.AverageTextLength))
	}
	if n := len(s.Categories); n > 0 {
		parts = append(parts, fmt.Sprintf("%d categories", n))
	}
	return b.styles.Muted.Render(strings.Join(parts, ", "))
}

func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the message shown in the ready and error states.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetResults records the outcome of a search and switches to StateResults.
func (b *Bar) SetResults(count int, elapsed time.Duration) {
	b.state = StateResults
	b.count = count
	b.elapsed = elapsed
}

// SetStats sets the corpus statistics.
func (b *Bar) SetStats(stats *domain.StatsResponse) {
	b.stats = stats
}

// SetHints replaces the keybinding hints.
func (b *Bar) SetHints(hints []key.Binding) {
	b.hints = hints
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}
