// Package embedder defines the Embedding Provider capability and the HTTP-
// backed implementations the engine can select between at configuration
// time: a local Ollama instance (the teacher's original target) and the
// two hosted API shapes most of the retrieval pack's embedding configs
// describe, OpenAI-compatible and Voyage-compatible.
package embedder

import "context"

// Provider embeds a batch of texts into fixed-dimension dense vectors. The
// returned slice has the same length and order as texts. Implementations
// own their own retry/backoff; a returned error means the batch could not
// be embedded after those retries were exhausted.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// maxRetries and backoff bound every HTTP-backed provider's retry loop.
const maxRetries = 3
