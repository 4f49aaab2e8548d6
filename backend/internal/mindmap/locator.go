package mindmap

import (
	"strings"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// Span is the object literal found after the declaration marker.
// Literal == Source[Start:End].
type Span struct {
	Literal string
	Start   int
	End     int
	Source  string
}

// Locate finds marker in text and returns the brace-balanced object literal
// that follows it.
//
// Brace counting is purely lexical: a '{' or '}' inside a string literal is
// counted like any other, so sources must not carry unbalanced braces in
// their strings.
func Locate(text, marker string) (*Span, error) {
	markerIdx := strings.Index(text, marker)
	if markerIdx == -1 {
		return nil, apperrors.NewSourceNotFound(apperrors.StageMarker, marker)
	}

	open := strings.IndexByte(text[markerIdx:], '{')
	if open == -1 {
		return nil, apperrors.NewSourceNotFound(apperrors.StageOpen, marker)
	}
	start := markerIdx + open

	end, ok := matchDelimiter(text, start, '{', '}')
	if !ok {
		return nil, apperrors.NewSourceNotFound(apperrors.StageClose, marker)
	}

	return &Span{
		Literal: text[start:end],
		Start:   start,
		End:     end,
		Source:  text,
	}, nil
}

// matchDelimiter returns the index just past the delimiter closing the one
// at s[start]
func matchDelimiter(s string, start int, open, close byte) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
