package mindmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// excerptBytes bounds the text attached to a decode failure
const excerptBytes = 500

// DecodeStrict decodes normalized JSON text into a Document.
//
// Any failure is returned as *errors.ErrDecodeFailed, which callers are
// expected to recover from with ExtractFallback.
func DecodeStrict(normalized string) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, decodeFailure(normalized, errorOffset(err, dec), err)
	}
	if _, err := dec.Token(); err != io.EOF {
		offset := dec.InputOffset()
		return nil, decodeFailure(normalized, offset, fmt.Errorf("unexpected data after object at offset %d", offset))
	}

	rootValue, ok := raw[keyRoot]
	if !ok {
		return nil, decodeFailure(normalized, -1, fmt.Errorf("missing %s", keyRoot))
	}

	root, err := nodeFromValue(rootValue, keyRoot)
	if err != nil {
		return nil, decodeFailure(normalized, -1, err)
	}

	return &Document{Root: root}, nil
}

func nodeFromValue(value any, path string) (*Node, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T", path, value)
	}

	node := &Node{
		ID:         scalarString(obj[keyID]),
		Title:      scalarString(obj[keyTitle]),
		URL:        scalarString(obj[keyURL]),
		Properties: make(map[string]any),
	}
	if node.ID == "" {
		return nil, fmt.Errorf("%s: missing id", path)
	}

	for key, v := range obj {
		switch key {
		case keyID, keyTitle, keyURL, keyChildren:
			continue
		}
		node.Properties[key] = v
	}

	children, ok := obj[keyChildren]
	if !ok || children == nil {
		return node, nil
	}
	list, ok := children.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected array, got %T", path, keyChildren, children)
	}
	node.Children = make([]*Node, 0, len(list))
	for i, item := range list {
		child, err := nodeFromValue(item, fmt.Sprintf("%s.%s[%d]", path, keyChildren, i))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func errorOffset(err error, dec *json.Decoder) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return dec.InputOffset()
	}
	return -1
}

func decodeFailure(text string, offset int64, err error) *apperrors.ErrDecodeFailed {
	return apperrors.NewDecodeFailed(offset, excerpt(text, offset), err)
}

// excerpt returns at most excerptBytes of text around offset, or its
// prefix when the offset is unknown
func excerpt(text string, offset int64) string {
	if len(text) <= excerptBytes {
		return text
	}
	start := 0
	if offset > 0 {
		start = int(offset) - excerptBytes/2
	}
	if start < 0 {
		start = 0
	}
	end := start + excerptBytes
	if end > len(text) {
		end = len(text)
		start = end - excerptBytes
	}
	for start < end && !utf8.RuneStart(text[start]) {
		start++
	}
	for end < len(text) && end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[start:end]
}
