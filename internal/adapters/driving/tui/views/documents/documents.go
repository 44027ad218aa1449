// Package documents provides the collection browser view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driving"
)

// DefaultPageSize is the number of documents loaded per page.
const DefaultPageSize = 20

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service is required")

// View pages through the collection in insertion order.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	documents []domain.DocumentView
	offset    int
	pageSize  int
	selected  int
	loading   bool
	loaded    bool
	err       error
	width     int
	height    int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
		documentService: documentService,
		ctx:             context.Background(),
		pageSize:        DefaultPageSize,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Loaded reports whether a page has been loaded.
func (v *View) Loaded() bool {
	return v.loaded
}

// Load returns a command that loads the page starting at offset.
func (v *View) Load(offset int) tea.Cmd {
	v.loading = true
	ctx, svc, limit := v.ctx, v.documentService, v.pageSize
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Offset: offset, Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx, offset, limit)
		return messages.DocumentsLoaded{Offset: offset, Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		// Paging past the end keeps the current page.
		if len(msg.Documents) == 0 && msg.Offset > 0 {
			return v, nil
		}
		v.err = nil
		v.loaded = true
		v.offset = msg.Offset
		v.documents = msg.Documents
		v.selected = 0
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Open):
		if v.selected < len(v.documents) {
			doc := v.documents[v.selected]
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: doc, Back: messages.ViewDocuments}
			}
		}
	case key.Matches(msg, v.keymap.NextPage):
		if len(v.documents) == v.pageSize {
			return v, v.Load(v.offset + v.pageSize)
		}
	case key.Matches(msg, v.keymap.PrevPage):
		if v.offset > 0 {
			return v, v.Load(max(v.offset-v.pageSize, 0))
		}
	case key.Matches(msg, v.keymap.Refresh):
		return v, v.Load(v.offset)
	case key.Matches(msg, v.keymap.Back), key.Matches(msg, v.keymap.Browse):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Documents"))
	if len(v.documents) > 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d-%d", v.offset+1, v.offset+len(v.documents))))
	}
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading && !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents. Add some with `vecdocs ingest`."))
	default:
		b.WriteString(v.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.FormatHelp(v.keymap.BrowseHelp(), "  ")))
	return b.String()
}

func (v *View) renderList() string {
	visible := max(v.height-6, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.documents))

	previewLen := max(v.width-50, 20)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		doc := v.documents[i]
		line := fmt.Sprintf("%-36s  %-12s  %s", doc.ID, doc.Metadata.Category,
			domain.Preview(strings.Join(strings.Fields(doc.Text), " "), previewLen))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Documents returns the loaded page.
func (v *View) Documents() []domain.DocumentView {
	return v.documents
}

// Offset returns the offset of the loaded page.
func (v *View) Offset() int {
	return v.offset
}

// Selected returns the index of the selected document.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
