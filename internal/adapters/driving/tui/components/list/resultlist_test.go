package list

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

func results(n int) []domain.ResultView {
	out := make([]domain.ResultView, n)
	for i := range out {
		out[i] = domain.ResultView{
			Document:   domain.DocumentView{ID: fmt.Sprintf("doc-%d", i+1), Text: fmt.Sprintf("text %d", i+1)},
			Similarity: 1 - float64(i)*0.1,
		}
	}
	return out
}

func TestResultList_Empty(t *testing.T) {
	r := NewResultList(nil)

	assert.Contains(t, r.View(), "No results")
	assert.Nil(t, r.SelectedResult())
}

func TestResultList_View(t *testing.T) {
	r := NewResultList(nil)
	rs := results(2)
	rs[0].Document.Metadata.Category = "notes"
	r.SetResults(rs)

	view := r.View()

	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "doc-1 [notes]")
	assert.Contains(t, view, "1.0000")
	assert.Contains(t, view, "0.9000")
	assert.Contains(t, view, "text 2")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(results(3))

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())

	r.MoveDown()
	r.MoveDown()
	r.MoveDown()
	assert.Equal(t, 2, r.Selected())

	selected := r.SelectedResult()
	require.NotNil(t, selected)
	assert.Equal(t, "doc-3", selected.Document.ID)

	r.SetResults(results(1))
	assert.Equal(t, 0, r.Selected())
}

func TestResultList_ScrollsToSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 6) // two results visible
	r.SetResults(results(5))

	for range 4 {
		r.MoveDown()
	}
	view := r.View()

	assert.Contains(t, view, "doc-5")
	assert.NotContains(t, view, "doc-1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "ééé...", truncate(strings.Repeat("é", 20), 6))
}
