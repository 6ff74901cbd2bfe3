//go:build !onnx

package main

import (
	"github.com/simplcli/dobby/internal/memory"
	"github.com/simplcli/dobby/internal/memory/embedder/mock"
)

// newEmbedder returns the dependency-free token-hash embedder. Build
// with -tags onnx for real sentence embeddings via onnxruntime.
func newEmbedder() memory.Embedder {
	return mock.New()
}
