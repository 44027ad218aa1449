// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// chromeHeight is the space taken by the header, input, and status bar.
const chromeHeight = 10

// View is the search view: query input, ranked results and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km.InputHelp()),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.StatsLoaded:
		if msg.Err == nil {
			v.statusbar.SetStats(msg.Stats)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Browse) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}

	if v.focusInput {
		switch {
		case key.Matches(msg, v.keymap.Search):
			return v, v.submit()
		case key.Matches(msg, v.keymap.Back):
			if len(v.list.Results()) > 0 {
				v.showResults()
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.Open):
		if r := v.list.SelectedResult(); r != nil {
			doc := r.Document
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: doc, Back: messages.ViewSearch}
			}
		}
	case key.Matches(msg, v.keymap.NewSearch), key.Matches(msg, v.keymap.Back):
		v.focusInput = true
		v.statusbar.SetHints(v.keymap.InputHelp())
		return v, v.input.Focus()
	}
	return v, nil
}

// submit validates the input and starts a search.
func (v *View) submit() tea.Cmd {
	req, err := v.input.Request()
	if err != nil {
		v.setError(err)
		return nil
	}
	v.err = nil
	v.statusbar.SetState(status.StateSearching)
	return v.performSearch(req)
}

func (v *View) performSearch(req domain.SearchRequest) tea.Cmd {
	ctx := v.ctx
	svc := v.searchService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		resp, err := svc.Search(ctx, req)
		return messages.SearchCompleted{Response: resp, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Response.Results)
	v.statusbar.SetResults(len(msg.Response.Results), msg.Response.Elapsed)
	if len(msg.Response.Results) > 0 {
		v.showResults()
	}
}

func (v *View) showResults() {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections,
		v.styles.Title.Render("vecdocs"), "",
		v.input.View(), "",
		v.list.View(), "",
		v.statusbar.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-chromeHeight)
	v.statusbar.SetWidth(width)
}

// Results returns the current search results.
func (v *View) Results() []domain.ResultView {
	return v.list.Results()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.ResultView {
	return v.list.SelectedResult()
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
