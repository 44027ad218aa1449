// Package list provides the ranked result list for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// barWidth is the width of the similarity bar.
const barWidth = 10

// linesPerResult is the height of one rendered result.
const linesPerResult = 2

// ResultList displays ranked search results in a navigable list.
type ResultList struct {
	results  []domain.ResultView
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)*linesPerResult+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	visible := max((r.height-2)/linesPerResult, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderResult(index int, result *domain.ResultView) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	label := result.Document.ID
	if c := result.Document.Metadata.Category; c != "" {
		label += " [" + c + "]"
	}
	label = truncate(label, max(r.width-barWidth-16, 10))

	score := r.styles.Similarity(result.Similarity).Render(
		fmt.Sprintf("%s %.4f", styles.SimilarityBar(result.Similarity, barWidth), result.Similarity))

	var head string
	if index == r.selected {
		head = r.styles.Selected.Render(fmt.Sprintf("%s%2d. %s", indicator, index+1, label))
	} else {
		head = r.styles.Normal.Render(fmt.Sprintf("%s%2d. %s", indicator, index+1, label))
	}
	head = lipgloss.JoinHorizontal(lipgloss.Top, head, "  ", score)

	preview := truncate(strings.Join(strings.Fields(result.Document.Text), " "), max(r.width-8, 20))
	return head + "\n" + r.styles.Muted.Render("      "+preview)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.ResultView) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.ResultView {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.ResultView {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}
