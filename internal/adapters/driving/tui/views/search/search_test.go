package search

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

type stubSearchService struct {
	resp *domain.SearchResponse
	last domain.SearchRequest
}

func (s *stubSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	s.last = req
	return s.resp, nil
}

func result(id string, sim float64) domain.ResultView {
	return domain.ResultView{Document: domain.DocumentView{ID: id, Text: "text of " + id}, Similarity: sim}
}

func newReadyView(svc *stubSearchService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 30)
	return v
}

func typeQuery(v *View, q string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	return v
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil, nil)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_SubmitQuery(t *testing.T) {
	svc := &stubSearchService{resp: &domain.SearchResponse{
		Results: []domain.ResultView{result("a", 0.9), result("b", 0.5)},
	}}
	v := typeQuery(newReadyView(svc), "  hello ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "hello", svc.last.Query)

	v, _ = v.Update(msg)
	assert.Len(t, v.Results(), 2)
	assert.False(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, v.SelectedResult())
	assert.Equal(t, "b", v.SelectedResult().Document.ID)

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "b", selected.Document.ID)
	assert.Equal(t, messages.ViewSearch, selected.Back)
}

func TestView_SubmitEmbedding(t *testing.T) {
	svc := &stubSearchService{resp: &domain.SearchResponse{}}
	v := typeQuery(newReadyView(svc), "[0.5,1]")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []float32{0.5, 1}, svc.last.QueryEmbedding)
	assert.Empty(t, svc.last.Query)
}

func TestView_InvalidEmbedding(t *testing.T) {
	v := typeQuery(newReadyView(&stubSearchService{}), "[1, oops]")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrValidation)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NewSearchRefocusesInput(t *testing.T) {
	svc := &stubSearchService{resp: &domain.SearchResponse{Results: []domain.ResultView{result("a", 1)}}}
	v := typeQuery(newReadyView(svc), "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, _ = v.Update(cmd())
	require.False(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	assert.True(t, v.InputFocused())
	assert.Equal(t, "q", v.Query())

	// Esc returns to the existing results.
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.InputFocused())
}

func TestView_Browse(t *testing.T) {
	v := newReadyView(&stubSearchService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(100, 30)
	v.SetQuery("q")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}
