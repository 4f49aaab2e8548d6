package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer answers /v1/embeddings with vectors [i, len(input_i)],
// listed in reverse order to check that Embed reorders by index
func fakeEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), float32(len(req.Input[i]))},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": len(req.Input), "total_tokens": len(req.Input)},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbeddingAdapter_Embed(t *testing.T) {
	srv := fakeEmbeddingServer(t)
	adapter := NewEmbeddingAdapter(srv.URL, "", "text-embedding-3-small", 2)

	vectors, err := adapter.Embed(context.Background(), []string{"Home /home", "A /a", "Auditor"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{0, 10}, vectors[0])
	assert.Equal(t, []float32{1, 4}, vectors[1])
	assert.Equal(t, []float32{2, 7}, vectors[2])
	assert.Equal(t, "text-embedding-3-small", adapter.Model())
}

func TestEmbeddingAdapter_EmbedEmpty(t *testing.T) {
	adapter := NewEmbeddingAdapter("http://127.0.0.1:1", "", "text-embedding-3-small", 0)

	vectors, err := adapter.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbeddingAdapter_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unavailable"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := NewEmbeddingAdapter(srv.URL, "", "text-embedding-3-small", 0)
	_, err := adapter.Embed(ctx, []string{"Home /home"})
	assert.Error(t, err)
}

// TestEmbeddingAdapter_LiteLLM requires a running LiteLLM instance
func TestEmbeddingAdapter_LiteLLM(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	baseURL := os.Getenv("LITELLM_URL")
	if baseURL == "" {
		t.Skip("LITELLM_URL not set")
	}

	adapter := NewEmbeddingAdapter(baseURL, os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", 1536)
	vectors, err := adapter.Embed(context.Background(), []string{"Home /home"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Len(t, vectors[0], 1536)
}
