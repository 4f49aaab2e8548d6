package mindmap

// ============================================================================
// Mind Map Types
// ============================================================================

// Reserved node keys. Every other key of a node literal lands in Properties.
const (
	keyID       = "id"
	keyTitle    = "title"
	keyURL      = "url"
	keyChildren = "children"
	keyRoot     = "rootNode"
)

// Node is one topic of the mind map tree
type Node struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	Properties map[string]any `json:"properties"`
	Children   []*Node        `json:"children,omitempty"`
}

// Document is the decoded outer object; Root is its rootNode field
type Document struct {
	Root *Node `json:"rootNode"`
}

// EdgeKind is the relationship type written between two nodes
type EdgeKind string

// EdgeContains links a parent topic to a child topic
const EdgeContains EdgeKind = "CONTAINS"

// Mutation is one graph write produced by Flatten. It is either a
// NodeUpsert or an EdgeUpsert.
type Mutation interface {
	isMutation()
}

// NodeUpsert creates or updates a navigation node by id
type NodeUpsert struct {
	ID         string
	Title      string
	URL        string
	Properties map[string]any
}

// EdgeUpsert creates a relationship between two existing nodes
type EdgeUpsert struct {
	SourceID string
	TargetID string
	Kind     EdgeKind
}

func (NodeUpsert) isMutation() {}
func (EdgeUpsert) isMutation() {}

// Count returns the number of node and edge upserts in mutations
func Count(mutations []Mutation) (nodes, edges int) {
	for _, m := range mutations {
		switch m.(type) {
		case NodeUpsert:
			nodes++
		case EdgeUpsert:
			edges++
		}
	}
	return nodes, edges
}
