package mindmap

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "mindmap-graph/backend/pkg/errors"
)

var (
	rootNodePattern   = regexp.MustCompile(`(?s)rootNode["']?\s*:\s*(\{.*\})`)
	idPattern         = fieldPattern(keyID)
	titlePattern      = fieldPattern(keyTitle)
	urlPattern        = fieldPattern(keyURL)
	expandablePattern = regexp.MustCompile(`\bisExpandable["']?\s*:\s*(true|false)`)
	childrenKey       = regexp.MustCompile(`\bchildren["']?\s*:\s*$`)
)

func fieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + name + `["']?\s*:\s*['"]([^'"]+)['"]`)
}

// ExtractFallback rebuilds the tree from the original source text with
// field patterns instead of a parser. It is used when DecodeStrict fails
// and recovers ids, titles, urls, isExpandable and the children structure;
// every other property is dropped.
func ExtractFallback(source string) (*Document, error) {
	m := rootNodePattern.FindStringSubmatch(source)
	if m == nil {
		return nil, apperrors.NewExtractionFailed(fmt.Sprintf("could not find %s", keyRoot), nil)
	}

	root, err := extractNode(m[1], 0)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// extractNode reads one node from literal, which starts at the node's '{'
func extractNode(literal string, depth int) (*Node, error) {
	if depth > MaxTreeDepth {
		return nil, apperrors.NewExtractionFailed(fmt.Sprintf("tree deeper than %d levels", MaxTreeDepth), nil)
	}
	if end, ok := matchDelimiter(literal, 0, '{', '}'); ok {
		literal = literal[:end]
	}

	groups := nestedGroups(literal)
	own := ownFields(literal, groups)

	node := &Node{Properties: make(map[string]any)}
	if m := idPattern.FindStringSubmatch(own); m != nil {
		node.ID = m[1]
	}
	if m := titlePattern.FindStringSubmatch(own); m != nil {
		node.Title = m[1]
	}
	if m := urlPattern.FindStringSubmatch(own); m != nil {
		node.URL = m[1]
	}
	if m := expandablePattern.FindStringSubmatch(own); m != nil {
		node.Properties["isExpandable"] = m[1] == "true"
	}

	body, ok := childrenBody(literal, groups)
	if !ok {
		return node, nil
	}
	segments := splitObjects(body)
	node.Children = make([]*Node, 0, len(segments))
	for _, segment := range segments {
		child, err := extractNode(segment, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// group is a '{...}' or '[...]' directly inside a node literal.
// literal[start] is the opening delimiter, end is one past the closer.
type group struct {
	open  byte
	start int
	end   int
}

// nestedGroups lists the closed groups one level below the node's own braces
func nestedGroups(literal string) []group {
	var groups []group
	depth, start := 0, 0
	for i := 0; i < len(literal); i++ {
		switch literal[i] {
		case '{', '[':
			depth++
			if depth == 2 {
				start = i
			}
		case '}', ']':
			if depth == 2 {
				groups = append(groups, group{open: literal[start], start: start, end: i + 1})
			}
			depth--
			if depth <= 0 {
				return groups
			}
		}
	}
	return groups
}

// ownFields blanks the contents of nested groups so field patterns only see
// the node's own keys
func ownFields(literal string, groups []group) string {
	var b strings.Builder
	b.Grow(len(literal))
	prev := 0
	for _, g := range groups {
		b.WriteString(literal[prev : g.start+1])
		prev = g.end - 1
	}
	b.WriteString(literal[prev:])
	return b.String()
}

// childrenBody returns the text between the brackets of the node's children
// array
func childrenBody(literal string, groups []group) (string, bool) {
	prev := 0
	for _, g := range groups {
		if g.open == '[' && childrenKey.MatchString(literal[prev:g.start]) {
			return literal[g.start+1 : g.end-1], true
		}
		prev = g.end
	}
	return "", false
}

// splitObjects cuts an array body into its top-level '{...}' elements
func splitObjects(body string) []string {
	var objects []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, body[start:i+1])
			}
		}
	}
	return objects
}
