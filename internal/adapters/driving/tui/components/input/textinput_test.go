package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

func TestNewQueryInput(t *testing.T) {
	q := NewQueryInput(nil)

	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Contains(t, q.View(), "Query:")
}

func TestQueryInput_Typing(t *testing.T) {
	q := NewQueryInput(nil)

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fox")})

	assert.Equal(t, "fox", q.Value())
}

func TestQueryInput_Request(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    domain.SearchRequest
		wantErr bool
	}{
		{"text", "  quick fox ", domain.SearchRequest{Query: "quick fox"}, false},
		{"embedding", "[1, 0.5, -2]", domain.SearchRequest{QueryEmbedding: []float32{1, 0.5, -2}}, false},
		{"empty", "   ", domain.SearchRequest{}, true},
		{"bad embedding", "[1, x]", domain.SearchRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryInput(nil)
			q.SetValue(tt.value)

			req, err := q.Request()

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req)
		})
	}
}

func TestQueryInput_FocusAndBlur(t *testing.T) {
	q := NewQueryInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQueryInput_SetWidth(t *testing.T) {
	q := NewQueryInput(nil)

	q.SetWidth(100)
	assert.Equal(t, 88, q.textinput.Width)

	q.SetWidth(10)
	assert.Equal(t, 20, q.textinput.Width)
}
