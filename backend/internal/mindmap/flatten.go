package mindmap

import (
	"fmt"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// MaxTreeDepth bounds recursion over trees recovered from malformed sources
const MaxTreeDepth = 256

// Flatten walks the tree in preorder and emits, for every node, its
// NodeUpsert followed by the CONTAINS edge from its parent (the root has
// none), then the records of its children in order.
func Flatten(root *Node) ([]Mutation, error) {
	if root == nil {
		return nil, apperrors.NewExtractionFailed("empty tree", nil)
	}

	var out []Mutation
	if err := flattenNode(root, "", keyRoot, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenNode(node *Node, parentID, path string, depth int, out *[]Mutation) error {
	if depth > MaxTreeDepth {
		return apperrors.NewExtractionFailed(fmt.Sprintf("tree deeper than %d levels at %s", MaxTreeDepth, path), nil)
	}
	if node.ID == "" {
		return apperrors.NewExtractionFailed(fmt.Sprintf("node at %s has no id", path), nil)
	}

	props := node.Properties
	if props == nil {
		props = map[string]any{}
	}
	*out = append(*out, NodeUpsert{
		ID:         node.ID,
		Title:      node.Title,
		URL:        node.URL,
		Properties: props,
	})

	if parentID != "" {
		*out = append(*out, EdgeUpsert{
			SourceID: parentID,
			TargetID: node.ID,
			Kind:     EdgeContains,
		})
	}

	for i, child := range node.Children {
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s.%s[%d]", path, keyChildren, i)
		if err := flattenNode(child, node.ID, childPath, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}
