package embedder

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider calls the OpenAI Embeddings API (or any API-compatible
// endpoint reachable by overriding the client's base URL).
type OpenAIProvider struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIProvider builds a provider for the given model. dimension, when
// positive, is passed through to models (like text-embedding-3-small) that
// support truncating their native dimension.
func NewOpenAIProvider(apiKey, model string, dimension int) *OpenAIProvider {
	return &OpenAIProvider{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		dimension: dimension,
	}
}

func (p *OpenAIProvider) Model() string  { return p.model }
func (p *OpenAIProvider) Dimension() int { return p.dimension }

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{Model: openai.EmbeddingModel(p.model)}
	if len(texts) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{OfString: openai.String(texts[0])}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts}
	}
	if p.dimension > 0 {
		params.Dimensions = openai.Int(int64(p.dimension))
	}

	var out [][]float32
	err := withRetry(ctx, func() error {
		resp, err := p.client.Embeddings.New(ctx, params)
		if err != nil {
			return fmt.Errorf("openai embeddings: %w", err)
		}
		vectors := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			v := make([]float32, len(d.Embedding))
			for j, f := range d.Embedding {
				v[j] = float32(f)
			}
			vectors[i] = v
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
		}
		out = vectors
		return nil
	})
	return out, err
}
