package graph

import "fmt"

// ============================================================================
// Navigation Graph Types
// ============================================================================

// NavigationLabel is the label carried by every imported mind map node
const NavigationLabel = "NavigationNode"

// NavigationNode is a mind map topic as stored in the graph. Properties is
// an opaque JSON object string.
type NavigationNode struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Properties string    `json:"properties"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// Relationship is a directed edge between two navigation nodes
type Relationship struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

// EmbeddingCandidate is the text source for one node's embedding
type EmbeddingCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Text is the string embedded for similarity search
func (c EmbeddingCandidate) Text() string {
	return fmt.Sprintf("%s %s", c.Title, c.URL)
}

// NodeEmbedding pairs a node id with its vector
type NodeEmbedding struct {
	ID     string
	Vector []float32
}

// SearchResult is one hit from a vector similarity search
type SearchResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Errors

// ErrNodeNotFound is returned when an edge endpoint or embedding target
// does not exist
type ErrNodeNotFound struct {
	NodeID string
}

func (e ErrNodeNotFound) Error() string {
	return fmt.Sprintf("navigation node not found: %s", e.NodeID)
}

// ErrInvalidName is returned for relationship types or index names that
// cannot be safely interpolated into Cypher
type ErrInvalidName struct {
	Kind string
	Name string
}

func (e ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Name)
}
