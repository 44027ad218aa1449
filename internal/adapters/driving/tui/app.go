package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// StatsRefreshInterval is how often the status bar statistics are reloaded.
const StatsRefreshInterval = 5 * time.Second

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	searchView    *search.View
	documentsView *documents.View
	documentView  *document.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		searchView:    search.NewView(s, km, ports.Search),
		documentsView: documents.NewView(s, km, ports.Document),
		documentView:  document.NewView(s, km),
		currentView:   messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("vecdocs"),
		a.searchView.Init(),
		a.loadStats(),
	)
}

func (a *App) loadStats() tea.Cmd {
	ctx, svc := a.ctx, a.ports.Document
	return func() tea.Msg {
		stats, err := svc.Stats(ctx, 0)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

func scheduleStatsRefresh() tea.Cmd {
	return tea.Tick(StatsRefreshInterval, func(time.Time) tea.Msg {
		return messages.StatsTick{}
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.searchView.SetDimensions(msg.Width, msg.Height)
		a.documentsView.SetDimensions(msg.Width, msg.Height)
		a.documentView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewDocuments && !a.documentsView.Loaded() {
			return a, a.documentsView.Load(0)
		}
		return a, nil

	case messages.DocumentSelected:
		a.documentView.SetDocument(msg.Document, msg.Back)
		a.currentView = messages.ViewDocument
		return a, nil

	case messages.StatsLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, tea.Batch(cmd, scheduleStatsRefresh())

	case messages.StatsTick:
		return a, a.loadStats()

	case messages.SearchCompleted, messages.ErrorOccurred:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd
	}

	// Cursor blink and other component messages belong to the search input.
	a.searchView, cmd = a.searchView.Update(msg)
	return a, cmd
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocument:
		return a.documentView.View()
	default:
		return a.searchView.View()
	}
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Results returns the current search results.
func (a *App) Results() []domain.ResultView {
	return a.searchView.Results()
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// DocumentsView returns the documents view.
func (a *App) DocumentsView() *documents.View {
	return a.documentsView
}

// DocumentView returns the document view.
func (a *App) DocumentView() *document.View {
	return a.documentView
}
