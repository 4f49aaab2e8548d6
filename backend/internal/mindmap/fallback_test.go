package mindmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mindmap-graph/backend/pkg/errors"
)

func TestExtractFallback(t *testing.T) {
	source := `export const sampleMindMap = {
  rootNode: {
    id: 'root',
    title: 'Home',
    url: '/home',
    children: [
      { id: 'a', title: 'A', url: '/a', isExpandable: true, children: [
        { id: 'a1', title: 'A1' },
      ] },
      { id: 'b', title: "B", isExpandable: false },
    ],
  },
};`

	doc, err := ExtractFallback(source)
	require.NoError(t, err)

	root := doc.Root
	assert.Equal(t, "root", root.ID)
	assert.Equal(t, "Home", root.Title)
	assert.Equal(t, "/home", root.URL)
	assert.Empty(t, root.Properties)

	require.Len(t, root.Children, 2)
	a, b := root.Children[0], root.Children[1]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, map[string]any{"isExpandable": true}, a.Properties)
	require.Len(t, a.Children, 1)
	assert.Equal(t, "a1", a.Children[0].ID)
	assert.Equal(t, "A1", a.Children[0].Title)
	assert.Equal(t, "", a.Children[0].URL)

	assert.Equal(t, "b", b.ID)
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, map[string]any{"isExpandable": false}, b.Properties)
	assert.Nil(t, b.Children)
}

func TestExtractFallback_NestedObjectsDoNotLeak(t *testing.T) {
	source := `rootNode: {
    listing: { id: 'inner', url: '/inner', isExpandable: true },
    id: 'outer',
    title: 'Outer',
    children: [
      { meta: { children: [ { id: 'ghost' } ] }, id: 'c' }
    ]
  }`

	doc, err := ExtractFallback(source)
	require.NoError(t, err)

	root := doc.Root
	assert.Equal(t, "outer", root.ID)
	assert.Equal(t, "", root.URL)
	assert.Empty(t, root.Properties)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "c", root.Children[0].ID)
	assert.Nil(t, root.Children[0].Children)
}

func TestExtractFallback_FieldAfterChildren(t *testing.T) {
	source := `rootNode: { children: [ { id: 'child' } ], id: 'parent' }`

	doc, err := ExtractFallback(source)
	require.NoError(t, err)
	assert.Equal(t, "parent", doc.Root.ID)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, "child", doc.Root.Children[0].ID)
}

func TestExtractFallback_QuotedKeys(t *testing.T) {
	source := `{"rootNode": {"id": "r", "title": "R", "children": [{"id": "x"}]}}`

	doc, err := ExtractFallback(source)
	require.NoError(t, err)
	assert.Equal(t, "r", doc.Root.ID)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, "x", doc.Root.Children[0].ID)
}

func TestExtractFallback_OmitsMissingFields(t *testing.T) {
	doc, err := ExtractFallback(`rootNode: { title: 'No id here' }`)
	require.NoError(t, err)
	assert.Equal(t, "", doc.Root.ID)
	assert.Equal(t, "No id here", doc.Root.Title)
}

func TestExtractFallback_NoRootNode(t *testing.T) {
	doc, err := ExtractFallback(`export const sampleMindMap = { nodes: [] }`)
	assert.Nil(t, doc)

	var extractionErr *apperrors.ErrExtractionFailed
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, extractionErr.Reason, "rootNode")
}

func TestSplitObjects(t *testing.T) {
	body := ` { a: 1 }, { b: { c: 2 } } , 'text', {d: []} `
	assert.Equal(t, []string{"{ a: 1 }", "{ b: { c: 2 } }", "{d: []}"}, splitObjects(body))
	assert.Empty(t, splitObjects("  "))
	assert.Equal(t, []string{"{x}"}, splitObjects("} {x}"))
}
