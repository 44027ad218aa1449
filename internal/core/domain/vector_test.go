package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCosineSimilarity_Identical tests that a nonzero vector is fully similar to itself
func TestCosineSimilarity_Identical(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0.3, -0.7, 2.5},
		{-4, -4, -4, -4},
	}

	for _, v := range vectors {
		sim, err := CosineSimilarity(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-9)
	}
}

// TestCosineSimilarity_Orthogonal tests orthogonal unit vectors
func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

// TestCosineSimilarity_Opposite tests opposite vectors
func TestCosineSimilarity_Opposite(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 2, 3}, []float32{-1, -2, -3})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

// TestCosineSimilarity_Symmetric tests sim(a,b) == sim(b,a)
func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b []float32
	}{
		{[]float32{1, 2}, []float32{3, 4}},
		{[]float32{0.1, -0.5, 0.9}, []float32{-2, 0, 1}},
		{[]float32{0, 0, 0}, []float32{1, 1, 1}},
	}

	for _, p := range pairs {
		ab, err := CosineSimilarity(p.a, p.b)
		require.NoError(t, err)
		ba, err := CosineSimilarity(p.b, p.a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

// TestCosineSimilarity_ZeroVector tests the zero-magnitude policy
func TestCosineSimilarity_ZeroVector(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"first zero", []float32{0, 0}, []float32{1, 2}},
		{"second zero", []float32{3, 4}, []float32{0, 0}},
		{"both zero", []float32{0, 0}, []float32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, 0.0, sim)
			assert.False(t, math.IsNaN(sim))
		})
	}
}

// TestCosineSimilarity_DimensionMismatch tests vectors of different lengths
func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.Contains(t, err.Error(), "expected 2 dimensions, got 3")
}

// TestCosineSimilarity_WithinRange tests the result never leaves [-1, 1]
func TestCosineSimilarity_WithinRange(t *testing.T) {
	vectors := [][]float32{
		{1e-20, 1e-20},
		{3.4e38, 3.4e38},
		{1, 1},
		{-1e-3, 5},
		{0.1, 0.2},
	}

	for _, a := range vectors {
		for _, b := range vectors {
			sim, err := CosineSimilarity(a, b)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(sim))
			assert.GreaterOrEqual(t, sim, -1.0)
			assert.LessOrEqual(t, sim, 1.0)
		}
	}
}

// TestMagnitude tests the Euclidean norm
func TestMagnitude(t *testing.T) {
	assert.Equal(t, 5.0, Magnitude([]float32{3, 4}))
	assert.Equal(t, 0.0, Magnitude([]float32{0, 0, 0}))
	assert.Equal(t, 0.0, Magnitude(nil))
}

// TestValidateEmbedding tests embedding validation
func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		v       []float32
		wantErr bool
	}{
		{"valid", []float32{0.1, 0.2}, false},
		{"empty", []float32{}, true},
		{"nil", nil, true},
		{"nan", []float32{1, float32(math.NaN())}, true},
		{"inf", []float32{float32(math.Inf(1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedding(tt.v)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
