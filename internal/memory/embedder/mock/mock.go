// Package mock provides a deterministic, offline embedder. Each token
// hashes to a pseudo-random unit vector and the text embeds as the
// normalized sum, so texts sharing words land near each other. Good
// enough for tests and for running without an embedding model; swap in
// the ONNX embedder for real semantic search.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Embedder implements memory.Embedder.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with all-MiniLM-L6-v2 dimensions so it
// is interchangeable with the ONNX embedder.
func New() *Embedder {
	return &Embedder{dimensions: 384}
}

// Embed converts text to a deterministic bag-of-tokens embedding.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	sum := make([]float32, m.dimensions)
	for _, tok := range tokens {
		vec := tokenVector(tok, m.dimensions)
		for i, v := range vec {
			sum[i] += v
		}
	}
	return normalize(sum), nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

// tokenVector generates a unit vector seeded by the token's hash.
func tokenVector(token string, dims int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(token))
	seed := h.Sum64()

	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		// LCG keeps this dependency-free and stable across runs.
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec)
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
