package graph

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process navigation graph with the same upsert
// semantics as Repository. It backs dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]NavigationNode
	edges map[Relationship]struct{}
	order []string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]NavigationNode),
		edges: make(map[Relationship]struct{}),
	}
}

// UpsertNode creates or overwrites the node; the embedding is kept
func (s *MemoryStore) UpsertNode(_ context.Context, node NavigationNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.nodes[node.ID]
	if !ok {
		s.order = append(s.order, node.ID)
	}
	node.Embedding = existing.Embedding
	s.nodes[node.ID] = node
	return nil
}

// UpsertEdge records the relationship once; both endpoints must exist
func (s *MemoryStore) UpsertEdge(_ context.Context, rel Relationship) error {
	if !cypherName.MatchString(rel.Type) {
		return ErrInvalidName{Kind: "relationship type", Name: rel.Type}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[rel.SourceID]; !ok {
		return ErrNodeNotFound{NodeID: rel.SourceID}
	}
	if _, ok := s.nodes[rel.TargetID]; !ok {
		return ErrNodeNotFound{NodeID: rel.TargetID}
	}
	s.edges[rel] = struct{}{}
	return nil
}

// CountNodes returns the number of nodes
func (s *MemoryStore) CountNodes(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.nodes)), nil
}

// CountEdges returns the number of CONTAINS relationships
func (s *MemoryStore) CountEdges(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for rel := range s.edges {
		if rel.Type == "CONTAINS" {
			n++
		}
	}
	return n, nil
}

// GetNode returns the node with the given id
func (s *MemoryStore) GetNode(_ context.Context, id string) (*NavigationNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound{NodeID: id}
	}
	return &node, nil
}

// Children returns the targets of id's outgoing relationships, sorted
func (s *MemoryStore) Children(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []string
	for rel := range s.edges {
		if rel.SourceID == id {
			children = append(children, rel.TargetID)
		}
	}
	sort.Strings(children)
	return children
}

// ResetNavigation removes every node and relationship
func (s *MemoryStore) ResetNavigation(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(len(s.nodes))
	s.nodes = make(map[string]NavigationNode)
	s.edges = make(map[Relationship]struct{})
	s.order = nil
	return deleted, nil
}

// ListEmbeddingCandidates mirrors Repository.ListEmbeddingCandidates
func (s *MemoryStore) ListEmbeddingCandidates(_ context.Context, onlyMissing bool) ([]EmbeddingCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []EmbeddingCandidate
	for _, node := range s.nodes {
		if onlyMissing && node.Embedding != nil {
			continue
		}
		candidates = append(candidates, EmbeddingCandidate{ID: node.ID, Title: node.Title, URL: node.URL})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates, nil
}

// SetNodeEmbeddings stores vectors on existing nodes; unknown ids are skipped
func (s *MemoryStore) SetNodeEmbeddings(_ context.Context, embeddings []NodeEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range embeddings {
		node, ok := s.nodes[e.ID]
		if !ok {
			continue
		}
		node.Embedding = append([]float32(nil), e.Vector...)
		s.nodes[e.ID] = node
	}
	return nil
}

// SearchSimilar ranks embedded nodes by cosine similarity to vector. Scores
// are scaled to [0, 1] the way Neo4j reports them. The index name is only
// validated.
func (s *MemoryStore) SearchSimilar(_ context.Context, index string, vector []float32, limit int) ([]SearchResult, error) {
	if !cypherName.MatchString(index) {
		return nil, ErrInvalidName{Kind: "index name", Name: index}
	}
	if limit < 1 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []SearchResult
	for _, node := range s.nodes {
		if len(node.Embedding) != len(vector) || len(vector) == 0 {
			continue
		}
		results = append(results, SearchResult{
			ID:    node.ID,
			Title: node.Title,
			URL:   node.URL,
			Score: (1 + cosine(node.Embedding, vector)) / 2,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Nodes returns every node in first-insertion order
func (s *MemoryStore) Nodes() []NavigationNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]NavigationNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}
