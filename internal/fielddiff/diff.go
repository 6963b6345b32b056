// Package fielddiff computes minimal changed-field maps between a stored
// record and a partial update payload, plus the human summary persisted with
// each audit event. Comparison runs over normalized forms (see the normalize
// package) so whitespace, key order, and effectively-empty structures never
// produce a change entry.
package fielddiff

import (
	"bytes"
	"encoding/json"
	"sort"

	"nestling-health/audit/internal/normalize"
)

// defaultExcludeKeys are bookkeeping fields never worth auditing.
var defaultExcludeKeys = []string{"id", "created_at", "updated_at"}

// Options adjusts how Build walks the payload.
type Options struct {
	// ExcludeKeys extends the default exclusion set (id, created_at,
	// updated_at), e.g. to skip a foreign-key field intentionally not
	// auditable.
	ExcludeKeys []string
	// FieldOrder supplies the payload's original key order, e.g. captured
	// from the raw request body with KeysFromJSON. Keys listed here but
	// absent from the payload are ignored. When empty, payload keys are
	// walked in sorted order.
	FieldOrder []string
}

// Build compares current against a partial update payload and returns the
// fields whose normalized forms differ. Only keys present in payload are
// considered; excluded keys are skipped unconditionally. Before/after hold
// the raw values, except that a side normalizing to nil is recorded as nil.
//
// Build is pure: it reads both maps, touches no storage, and returns an
// empty ChangeSet for a no-op update.
func Build(current, payload map[string]any, opts Options) ChangeSet {
	excluded := make(map[string]struct{}, len(defaultExcludeKeys)+len(opts.ExcludeKeys))
	for _, k := range defaultExcludeKeys {
		excluded[k] = struct{}{}
	}
	for _, k := range opts.ExcludeKeys {
		excluded[k] = struct{}{}
	}

	order := opts.FieldOrder
	if len(order) == 0 {
		order = make([]string, 0, len(payload))
		for k := range payload {
			order = append(order, k)
		}
		sort.Strings(order)
	}

	var changes ChangeSet
	for _, field := range order {
		after, ok := payload[field]
		if !ok {
			continue
		}
		if _, skip := excluded[field]; skip {
			continue
		}
		before := current[field]
		normBefore := normalize.Value(before)
		normAfter := normalize.Value(after)
		if normBefore == normAfter {
			continue
		}
		if normBefore == nil {
			before = nil
		}
		if normAfter == nil {
			after = nil
		}
		changes.Set(field, FieldChange{Before: before, After: after})
	}
	return changes
}

// KeysFromJSON returns the top-level key order of a raw JSON object, for
// boundary callers that still hold the request body and want the diff to
// follow its field order. Returns nil when raw is not a JSON object; keys
// read before a syntax error are kept.
func KeysFromJSON(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := keyTok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}
