package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Search Operations
// ============================================================================

// SearchSimilar returns the limit nodes nearest to vector in the named
// vector index, best match first
func (r *Repository) SearchSimilar(ctx context.Context, index string, vector []float32, limit int) ([]SearchResult, error) {
	if !cypherName.MatchString(index) {
		return nil, ErrInvalidName{Kind: "index name", Name: index}
	}
	if limit < 1 {
		limit = 5
	}

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	searchQuery := `
		CALL db.index.vector.queryNodes($index, $limit, $embedding)
		YIELD node, score
		RETURN node.id as id, node.title as title, node.url as url, score
		ORDER BY score DESC
	`

	result, err := session.Run(ctx, searchQuery, map[string]interface{}{
		"index":     index,
		"limit":     limit,
		"embedding": toFloat64s(vector),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search navigation nodes: %w", err)
	}

	var results []SearchResult
	for result.Next(ctx) {
		record := result.Record()
		results = append(results, SearchResult{
			ID:    getStringFromRecord(record, "id"),
			Title: getStringFromRecord(record, "title"),
			URL:   getStringFromRecord(record, "url"),
			Score: getFloat64FromRecord(record, "score"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	return results, nil
}
