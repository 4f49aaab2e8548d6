package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Navigation Node Operations
// ============================================================================

// UpsertNode creates the node with the given id or overwrites its title,
// url and properties
func (r *Repository) UpsertNode(ctx context.Context, node NavigationNode) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := `
		MERGE (n:NavigationNode {id: $id})
		SET n.title = $title,
		    n.url = $url,
		    n.properties = $properties,
		    n.updated_at = datetime()
	`

	err := exec(ctx, session, query, map[string]interface{}{
		"id":         node.ID,
		"title":      node.Title,
		"url":        node.URL,
		"properties": node.Properties,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert navigation node: %w", err)
	}

	r.logger.Debug("Created/updated node", zap.String("node_id", node.ID))
	return nil
}

// UpsertEdge links two existing nodes with a relationship of the given type.
// Both endpoints must already exist.
func (r *Repository) UpsertEdge(ctx context.Context, rel Relationship) error {
	if !cypherName.MatchString(rel.Type) {
		return ErrInvalidName{Kind: "relationship type", Name: rel.Type}
	}

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (source:NavigationNode {id: $sourceID})
		MATCH (target:NavigationNode {id: $targetID})
		MERGE (source)-[r:%s]->(target)
		RETURN count(r) as linked
	`, rel.Type)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"sourceID": rel.SourceID,
		"targetID": rel.TargetID,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationship: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify relationship: %w", err)
	}
	if getInt64FromRecord(record, "linked") == 0 {
		return ErrNodeNotFound{NodeID: missingEndpoint(ctx, r, rel)}
	}

	r.logger.Debug("Created relationship",
		zap.String("source_id", rel.SourceID),
		zap.String("target_id", rel.TargetID),
		zap.String("type", rel.Type),
	)
	return nil
}

// missingEndpoint reports which side of rel is absent, preferring the source
func missingEndpoint(ctx context.Context, r *Repository, rel Relationship) string {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		OPTIONAL MATCH (s:NavigationNode {id: $sourceID})
		RETURN s IS NOT NULL as found
	`, map[string]interface{}{"sourceID": rel.SourceID})
	if err != nil {
		return rel.TargetID
	}
	record, err := result.Single(ctx)
	if err != nil {
		return rel.TargetID
	}
	if found, _ := record.Get("found"); found == false {
		return rel.SourceID
	}
	return rel.TargetID
}

// CountNodes returns the number of navigation nodes
func (r *Repository) CountNodes(ctx context.Context) (int64, error) {
	return r.count(ctx, `MATCH (n:NavigationNode) RETURN count(n) as count`)
}

// CountEdges returns the number of CONTAINS relationships between
// navigation nodes
func (r *Repository) CountEdges(ctx context.Context) (int64, error) {
	return r.count(ctx, `MATCH (:NavigationNode)-[r:CONTAINS]->(:NavigationNode) RETURN count(r) as count`)
}

// GetNode fetches one navigation node by id
func (r *Repository) GetNode(ctx context.Context, id string) (*NavigationNode, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n:NavigationNode {id: $id})
		RETURN n.id as id, n.title as title, n.url as url, n.properties as properties
	`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
		return nil, ErrNodeNotFound{NodeID: id}
	}

	record := result.Record()
	return &NavigationNode{
		ID:         getStringFromRecord(record, "id"),
		Title:      getStringFromRecord(record, "title"),
		URL:        getStringFromRecord(record, "url"),
		Properties: getStringFromRecord(record, "properties"),
	}, nil
}

// ResetNavigation deletes every navigation node and its relationships
func (r *Repository) ResetNavigation(ctx context.Context) (int64, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n:NavigationNode)
		DETACH DELETE n
		RETURN count(n) as deleted
	`, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to clear navigation data: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch delete count: %w", err)
	}

	deleted := getInt64FromRecord(record, "deleted")
	r.logger.Info("Existing navigation data cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}
