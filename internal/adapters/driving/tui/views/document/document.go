// Package document provides the single document view for the TUI.
package document

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// reservedLines covers the title, separator, and help footer.
const reservedLines = 6

// View shows a document's metadata and full text.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	doc          *domain.DocumentView
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new document view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keymap: km, width: 80, height: 24}
}

// SetDocument sets the document to display and the view to return to.
func (v *View) SetDocument(doc domain.DocumentView, back messages.ViewType) {
	v.doc = &doc
	v.back = back
	v.scrollOffset = 0
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case key.Matches(msg, v.keymap.Down):
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		case key.Matches(msg, v.keymap.Back):
			back := v.back
			return v, func() tea.Msg {
				return messages.ViewChanged{View: back}
			}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

func (v *View) buildContent() []string {
	if v.doc == nil {
		return nil
	}

	category := v.doc.Metadata.Category
	if category == "" {
		category = "(none)"
	}
	lines := []string{
		v.formatField("ID", v.doc.ID),
		v.formatField("Category", category),
		v.formatField("Length", fmt.Sprintf("%d characters", v.doc.Metadata.Length)),
		v.formatField("Created", v.doc.Metadata.CreatedAt.Local().Format("2006-01-02 15:04:05")),
		"",
	}

	wrapped := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(v.doc.Text)
	return append(lines, strings.Split(wrapped, "\n")...)
}

func (v *View) formatField(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-10s", label+":")) + " " + v.styles.Normal.Render(value)
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	if v.doc == nil {
		b.WriteString(v.styles.Muted.Render("No document selected"))
	} else {
		lines := v.buildContent()
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(lines))
		b.WriteString(strings.Join(lines[v.scrollOffset:end], "\n"))

		if len(lines) > visible {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]", v.scrollOffset+1, end, len(lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Document returns the displayed document.
func (v *View) Document() *domain.DocumentView {
	return v.doc
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
