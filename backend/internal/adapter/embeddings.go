package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"mindmap-graph/backend/pkg/logger"
)

const maxRetries = 3

// EmbeddingAdapter requests embeddings from an OpenAI-compatible endpoint
// (LiteLLM or OpenAI itself)
type EmbeddingAdapter struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbeddingAdapter creates a new embedding adapter. dimensions is sent
// with each request when positive; models without shortening support
// should be configured with 0.
func NewEmbeddingAdapter(baseURL, apiKey, model string, dimensions int) *EmbeddingAdapter {
	// For LiteLLM, we can use a dummy API key if not provided
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL + "/v1"
	}

	return &EmbeddingAdapter{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
		logger:     logger.Get(),
	}
}

// Model returns the embedding model name
func (a *EmbeddingAdapter) Model() string {
	return a.model
}

// Embed returns one vector per input text, in input order
func (a *EmbeddingAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(a.model),
	}
	if a.dimensions > 0 {
		req.Dimensions = a.dimensions
	}

	// Retry logic with linear backoff
	var resp openai.EmbeddingResponse
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}

		a.logger.Error("Embedding request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
			zap.Int("inputs", len(texts)),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings after %d attempts: %w", maxRetries, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	a.logger.Debug("Created embeddings",
		zap.String("model", a.model),
		zap.Int("count", len(vectors)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
	)
	return vectors, nil
}
