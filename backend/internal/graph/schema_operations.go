package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Schema Operations
// ============================================================================

var navigationSchema = []string{
	"CREATE CONSTRAINT navigation_node_id IF NOT EXISTS FOR (n:NavigationNode) REQUIRE n.id IS UNIQUE",
	"CREATE INDEX navigation_node_title IF NOT EXISTS FOR (n:NavigationNode) ON (n.title)",
	"CREATE INDEX navigation_node_url IF NOT EXISTS FOR (n:NavigationNode) ON (n.url)",
}

// EnsureSchema creates the id constraint and the title/url indexes. Every
// statement is attempted; the first failure is returned.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	var firstErr error
	for _, statement := range navigationSchema {
		if err := exec(ctx, session, statement, nil); err != nil {
			r.logger.Error("Failed to execute schema statement",
				zap.String("statement", statement),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to create schema: %w", err)
			}
			continue
		}
		r.logger.Debug("Schema statement applied", zap.String("statement", statement))
	}
	return firstErr
}

// EnsureVectorIndex creates a cosine vector index over n.embedding
func (r *Repository) EnsureVectorIndex(ctx context.Context, name string, dimensions int) error {
	if !cypherName.MatchString(name) {
		return ErrInvalidName{Kind: "index name", Name: name}
	}
	if dimensions <= 0 {
		return fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:NavigationNode) ON (n.embedding)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, name, dimensions)

	if err := exec(ctx, session, query, nil); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	r.logger.Info("Vector index ready",
		zap.String("index", name),
		zap.Int("dimensions", dimensions),
	)
	return nil
}
