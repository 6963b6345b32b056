package audit

import (
	"unicode/utf8"

	"nestling-health/audit/internal/fielddiff"
)

// DefaultMaxValueLen is the per-string cap applied to stored change values
// when no explicit limit is configured.
const DefaultMaxValueLen = 1000

// TruncateValue caps every string leaf in v at maxLen runes, appending an
// ellipsis to anything cut. Arrays and objects are walked recursively;
// non-string leaves are returned unchanged. maxLen <= 0 disables truncation.
func TruncateValue(v any, maxLen int) any {
	if maxLen <= 0 {
		return v
	}
	switch x := v.(type) {
	case string:
		return truncateString(x, maxLen)
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = TruncateValue(el, maxLen)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[k] = TruncateValue(el, maxLen)
		}
		return out
	default:
		return v
	}
}

// TruncateChanges returns a copy of changes with every before/after value
// passed through TruncateValue. Field order is preserved.
func TruncateChanges(changes fielddiff.ChangeSet, maxLen int) fielddiff.ChangeSet {
	if maxLen <= 0 {
		return changes
	}
	var out fielddiff.ChangeSet
	for _, field := range changes.Fields() {
		fc, _ := changes.Get(field)
		out.Set(field, fielddiff.FieldChange{
			Before: TruncateValue(fc.Before, maxLen),
			After:  TruncateValue(fc.After, maxLen),
		})
	}
	return out
}

func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "…"
}
