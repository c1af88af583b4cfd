package lookup

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"
)

// NewGeminiEmbedding returns an embedding function backed by the Gemini
// embedding API. The same function embeds both catalog records at startup and
// lookup keys at query time, so dense similarity compares like with like.
func NewGeminiEmbedding(ctx context.Context, apiKey, model string) (chromem.EmbeddingFunc, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	return func(ctx context.Context, doc string) ([]float32, error) {
		contents := []*genai.Content{
			genai.NewContentFromText(doc, genai.RoleUser),
		}
		result, err := client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("empty embedding returned")
		}
		return result.Embeddings[0].Values, nil
	}, nil
}
