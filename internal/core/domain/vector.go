package domain

import "math"

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b.
//
// The vectors must have the same length. If either has zero magnitude the
// similarity is 0. The result is clamped to [-1, 1] and is never NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDimensionMismatch(len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim) || math.IsInf(sim, 0):
		return 0, nil
	case sim > 1:
		return 1, nil
	case sim < -1:
		return -1, nil
	}
	return sim, nil
}

// ValidateEmbedding checks that v is a usable embedding: non-empty and finite.
func ValidateEmbedding(v []float32) error {
	if len(v) == 0 {
		return NewValidationError("embedding must be a non-empty sequence of numbers")
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NewValidationError("embedding value at index %d is not a finite number", i)
		}
	}
	return nil
}
