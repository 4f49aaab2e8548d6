package mindmap

import (
	"regexp"
	"strings"
)

var (
	lineSeparator     = regexp.MustCompile(`,\r?\n`)
	danglingSeparator = regexp.MustCompile(`,\s*([\]}])`)
	bareKey           = regexp.MustCompile(`([{,]\s*)([a-zA-Z0-9_]+)(\s*:)`)
)

// Normalize rewrites a TypeScript object literal into JSON text.
//
// The rewrite is textual and makes no attempt to track string contents:
// every single quote becomes a double quote, so an apostrophe inside a
// title or url corrupts the output. Callers treat the result as a best
// effort and fall back to ExtractFallback when it does not decode.
func Normalize(literal string) string {
	s := strings.ReplaceAll(literal, "'", `"`)

	// Trailing commas
	s = lineSeparator.ReplaceAllString(s, ",")
	s = danglingSeparator.ReplaceAllString(s, "$1")

	// Unquoted keys
	s = bareKey.ReplaceAllString(s, `$1"$2"$3`)

	return s
}
