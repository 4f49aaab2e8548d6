package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Embedding Operations
// ============================================================================

// ListEmbeddingCandidates returns the nodes to embed, ordered by id. With
// onlyMissing set, nodes that already carry an embedding are skipped.
func (r *Repository) ListEmbeddingCandidates(ctx context.Context, onlyMissing bool) ([]EmbeddingCandidate, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (n:NavigationNode)
		WHERE NOT $onlyMissing OR n.embedding IS NULL
		RETURN n.id as id, n.title as title, n.url as url
		ORDER BY n.id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"onlyMissing": onlyMissing,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes for embedding: %w", err)
	}

	var candidates []EmbeddingCandidate
	for result.Next(ctx) {
		record := result.Record()
		candidates = append(candidates, EmbeddingCandidate{
			ID:    getStringFromRecord(record, "id"),
			Title: getStringFromRecord(record, "title"),
			URL:   getStringFromRecord(record, "url"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes for embedding: %w", err)
	}

	return candidates, nil
}

// SetNodeEmbeddings writes vectors onto their nodes in one transaction
func (r *Repository) SetNodeEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(embeddings))
	for _, e := range embeddings {
		rows = append(rows, map[string]any{
			"id":        e.ID,
			"embedding": toFloat64s(e.Vector),
		})
	}

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	updated, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			UNWIND $rows AS row
			MATCH (n:NavigationNode {id: row.id})
			SET n.embedding = row.embedding,
			    n.embedded_at = datetime()
			RETURN count(n) as updated
		`, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64FromRecord(record, "updated"), nil
	})
	if err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}

	if n, _ := updated.(int64); n != int64(len(embeddings)) {
		r.logger.Warn("Some embeddings had no matching node",
			zap.Int("requested", len(embeddings)),
			zap.Int64("updated", n),
		)
	}
	return nil
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
