package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-graph/backend/internal/graph"

	apperrors "mindmap-graph/backend/pkg/errors"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s stubEmbedder) Model() string { return "stub" }

func (s stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return [][]float32{s.vector}, nil
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer

	assert.Equal(t, 0, run([]string{"-h"}, &out))
	assert.Contains(t, out.String(), "Usage: reindex")
	assert.Contains(t, out.String(), "-only-missing")
	assert.Contains(t, out.String(), "-query")
}

func TestRun_UnknownFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"-bogus"}, &out))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	require.NoError(t, store.UpsertNode(ctx, graph.NavigationNode{ID: "audit", Title: "Audit", URL: "/audit"}))
	require.NoError(t, store.UpsertNode(ctx, graph.NavigationNode{ID: "risk", Title: "Risk", URL: "/risk"}))
	require.NoError(t, store.SetNodeEmbeddings(ctx, []graph.NodeEmbedding{
		{ID: "audit", Vector: []float32{1, 0}},
		{ID: "risk", Vector: []float32{0, 1}},
	}))

	results, err := search(ctx, stubEmbedder{vector: []float32{0.9, 0.1}}, store, "navigation_vector_index", "audit trail", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "audit", results[0].ID)

	var out bytes.Buffer
	printResults(&out, []graph.SearchResult{{ID: "audit", Title: "Audit", URL: "/audit", Score: 0.5}})
	assert.Equal(t, "1. 0.5000 audit \"Audit\" /audit\n", out.String())
}

func TestSearch_EmbedderFailure(t *testing.T) {
	_, err := search(context.Background(), stubEmbedder{err: errors.New("quota")}, graph.NewMemoryStore(), "navigation_vector_index", "x", 1)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeEmbedding))
}
