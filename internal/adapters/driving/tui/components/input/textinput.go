// Package input provides the query input component for the TUI.
package input

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// charLimit leaves room for pasted embedding vectors.
const charLimit = 1 << 16

// QueryInput accepts either query text or a JSON embedding such as [0.1, 0.2].
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQueryInput creates a focused query input.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "query text, or an embedding like [0.1, 0.2, ...]"
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Query: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Request builds a search request from the current value.
// Values starting with '[' are parsed as a query embedding.
func (q *QueryInput) Request() (domain.SearchRequest, error) {
	value := strings.TrimSpace(q.textinput.Value())
	if value == "" {
		return domain.SearchRequest{}, domain.NewValidationError("query is empty")
	}
	if !strings.HasPrefix(value, "[") {
		return domain.SearchRequest{Query: value}, nil
	}

	var values []float64
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return domain.SearchRequest{}, domain.NewValidationError("embedding must be a JSON array of numbers")
	}
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}
	return domain.SearchRequest{QueryEmbedding: vec}, nil
}

// Value returns the current input value.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	// label and border padding
	q.textinput.Width = max(width-12, 20)
}
