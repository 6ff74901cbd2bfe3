//go:build onnx

package main

import (
	"os"

	"github.com/simplcli/dobby/internal/memory"
	"github.com/simplcli/dobby/internal/memory/embedder/mock"
	"github.com/simplcli/dobby/internal/memory/embedder/onnx"
)

// newEmbedder returns the ONNX sentence embedder when its model is
// configured, falling back to the token-hash embedder otherwise so an
// onnx build still runs without model files.
func newEmbedder() memory.Embedder {
	modelPath := os.Getenv("DOBBY_ONNX_MODEL")
	if modelPath == "" {
		return mock.New()
	}
	e, err := onnx.New(onnx.Config{
		ModelPath:     modelPath,
		TokenizerPath: os.Getenv("DOBBY_ONNX_TOKENIZER"),
	})
	if err != nil {
		return mock.New()
	}
	return e
}
