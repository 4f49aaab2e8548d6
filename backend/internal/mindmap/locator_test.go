package mindmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mindmap-graph/backend/pkg/errors"
)

const marker = "export const sampleMindMap"

func TestLocate_ExactSpan(t *testing.T) {
	text := "import x from 'y';\n\nexport const sampleMindMap: MindMapData = { rootNode: { id: 'r' } };\nexport default sampleMindMap;"

	span, err := Locate(text, marker)
	require.NoError(t, err)

	assert.Equal(t, "{ rootNode: { id: 'r' } }", span.Literal)
	assert.Equal(t, span.Literal, text[span.Start:span.End])
	assert.Equal(t, text, span.Source)
}

func TestLocate_IgnoresBracesBeforeMarker(t *testing.T) {
	text := "import { MindMapData } from './types';\nexport const sampleMindMap = {a: {b: 1}}"

	span, err := Locate(text, marker)
	require.NoError(t, err)
	assert.Equal(t, "{a: {b: 1}}", span.Literal)
}

func TestLocate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stage string
	}{
		{name: "missing marker", text: "const other = { rootNode: {} }", stage: apperrors.StageMarker},
		{name: "missing open", text: "export const sampleMindMap = null;", stage: apperrors.StageOpen},
		{name: "unbalanced", text: "export const sampleMindMap = { rootNode: { id: 'a' }", stage: apperrors.StageClose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := Locate(tt.text, marker)
			assert.Nil(t, span)

			var notFound *apperrors.ErrSourceNotFound
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.stage, notFound.Stage)
			assert.Equal(t, marker, notFound.Marker)
		})
	}
}

// Braces inside strings are counted; a stray '}' in a title closes the
// literal early.
func TestLocate_LexicalCounting(t *testing.T) {
	text := "export const sampleMindMap = { rootNode: { id: 'a', title: 'x}' } }"

	span, err := Locate(text, marker)
	require.NoError(t, err)
	assert.Equal(t, "{ rootNode: { id: 'a', title: 'x}' }", span.Literal)
}
