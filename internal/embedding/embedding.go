// Package embedding defines the vector provider contract and the
// file-backed cache for the profile embedding.
package embedding

import (
	"context"
	"math"
)

// Embedder produces a fixed-length semantic vector for a text. Providers
// wrap an external model (Gemini, OpenAI) and must be safe for reuse across
// calls; the engine invokes them synchronously.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is empty or zero-length in magnitude. The raw value is
// in [-1,1]; clamping for scoring is the caller's concern.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
