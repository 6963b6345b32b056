// Package normalize canonicalizes dynamic field values so that
// semantically-insignificant differences (whitespace, key order, empty
// nested structures, redundant date/number string formats) collapse to
// equality before diffing.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the canonical date form all date-like values reduce to.
const dateLayout = "2006-01-02"

var (
	// numericRe accepts plain decimal numerals only: optional sign, digits,
	// optional single fractional part. Exponents, hex, Infinity, NaN, and
	// bare-dot forms stay strings.
	numericRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	// dateRe accepts an ISO-8601-like date or datetime: YYYY-MM-DD alone or
	// followed by a T/space-separated time with optional seconds, fraction,
	// and zone offset.
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|z|[+-]\d{2}:?\d{2})?)?$`)
)

// Value maps a field value to its canonical comparable form: nil, bool,
// float64, or string. Two values a human would consider the same normalize
// to equal results, so outputs compare with ==.
//
// Value is total: it never panics and never returns an error. Inputs it does
// not recognize degenerate through the generic string path.
func Value(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case string:
		return normalizeString(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return normalizeString(string(x))
	case time.Time:
		return x.Format(dateLayout)
	case []any:
		return normalizeArray(x)
	case map[string]any:
		return normalizeObject(x)
	default:
		return normalizeString(fmt.Sprintf("%v", x))
	}
}

// Equal reports whether two field values normalize to the same canonical form.
func Equal(a, b any) bool {
	return Value(a) == Value(b)
}

// EffectivelyEmpty reports whether every leaf of v normalizes to nil: nil
// itself, whitespace-only strings, and arrays/objects whose members are all
// effectively empty (an empty array or object counts).
func EffectivelyEmpty(v any) bool {
	switch x := v.(type) {
	case map[string]any:
		for _, val := range x {
			if !EffectivelyEmpty(val) {
				return false
			}
		}
		return true
	case []any:
		for _, el := range x {
			if !EffectivelyEmpty(el) {
				return false
			}
		}
		return true
	default:
		return Value(v) == nil
	}
}

func normalizeString(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if dateRe.MatchString(trimmed) {
		if _, err := time.Parse(dateLayout, trimmed[:len(dateLayout)]); err == nil {
			return trimmed[:len(dateLayout)]
		}
		// Date-shaped but not a real calendar date; fall through.
	}
	if numericRe.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return strings.Join(strings.Fields(trimmed), " ")
}

// normalizeArray drops elements that normalize to nil. An array left empty is
// nil; otherwise the surviving raw elements are rendered as a stable string so
// any structural difference is detected.
func normalizeArray(xs []any) any {
	kept := make([]any, 0, len(xs))
	for _, el := range xs {
		if Value(el) != nil {
			kept = append(kept, el)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return stableString(kept)
}

// normalizeObject collapses an effectively-empty object to nil; otherwise the
// raw object is rendered as a stable string with keys sorted at every level.
func normalizeObject(m map[string]any) any {
	if EffectivelyEmpty(m) {
		return nil
	}
	return stableString(m)
}

// stableString renders v deterministically. encoding/json sorts map keys at
// every depth, so key order never affects the result. Values json cannot
// encode degrade to a fmt rendering instead of failing.
func stableString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
