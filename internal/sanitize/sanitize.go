// Package sanitize neutralizes script-injection patterns in request payloads.
// It is a defense-in-depth layer that runs on every request independently of
// schema validation: string leaves are trimmed and scrubbed of script blocks,
// javascript: scheme prefixes, and inline event-handler attributes, while
// arrays and objects are walked structurally.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// scriptRE removes <script …>…</script> blocks, non-greedy, case
	// insensitive, spanning newlines.
	scriptRE = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)

	// jsSchemeRE removes javascript: scheme prefixes wherever they appear.
	jsSchemeRE = regexp.MustCompile(`(?i)javascript:`)

	// eventAttrRE removes inline handler attribute patterns such as
	// onclick= or onload = .
	eventAttrRE = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// String returns s with injection patterns removed and surrounding
// whitespace trimmed.
func String(s string) string {
	s = scriptRE.ReplaceAllString(s, "")
	s = jsSchemeRE.ReplaceAllString(s, "")
	s = eventAttrRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Value recursively sanitizes a deserialized JSON value. String leaves are
// cleaned with String; maps and slices are rebuilt with every leaf cleaned;
// all other values pass through unchanged. The input is not mutated.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	default:
		return v
	}
}
