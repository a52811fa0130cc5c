// Package screening holds the rule-based resume evaluators: text
// normalization, experience inference and the gated weighted scorer shared by
// every role.
package screening

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes extracted resume text for pattern matching. Values
// that are not strings normalize to "".
func Normalize(v any) string {
	switch s := v.(type) {
	case string:
		return NormalizeString(s)
	case []byte:
		return NormalizeString(string(s))
	case *string:
		if s == nil {
			return ""
		}
		return NormalizeString(*s)
	default:
		return ""
	}
}

// NormalizeString lowercases s, collapses whitespace runs to a single space
// and trims both ends.
func NormalizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
