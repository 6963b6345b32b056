package fielddiff

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldChange holds the original (pre-normalization) values for one changed
// field. A side whose normalized form is nil is recorded as nil, so clearing
// a field to an empty string and clearing it to null read the same.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// ChangeSet maps field names to FieldChanges, preserving the order in which
// fields were added. Go maps are unordered, so the type carries its own key
// order and (un)marshals JSON objects in that order.
//
// The zero value is an empty ChangeSet ready to use.
type ChangeSet struct {
	fields  []string
	changes map[string]FieldChange
}

// Set records the change for field, appending it to the order on first use.
// Setting an existing field replaces its change without moving it.
func (c *ChangeSet) Set(field string, change FieldChange) {
	if c.changes == nil {
		c.changes = make(map[string]FieldChange)
	}
	if _, ok := c.changes[field]; !ok {
		c.fields = append(c.fields, field)
	}
	c.changes[field] = change
}

// Get returns the change for field and whether it is present.
func (c ChangeSet) Get(field string) (FieldChange, bool) {
	ch, ok := c.changes[field]
	return ch, ok
}

// Len returns the number of changed fields.
func (c ChangeSet) Len() int {
	return len(c.fields)
}

// Fields returns the field names in insertion order.
func (c ChangeSet) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// MarshalJSON encodes the ChangeSet as a JSON object with keys in field order.
func (c ChangeSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range c.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.changes[field])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the ChangeSet, capturing the key
// order of the document so order survives queue and storage round trips.
// A JSON null decodes to an empty ChangeSet.
func (c *ChangeSet) UnmarshalJSON(data []byte) error {
	c.fields = nil
	c.changes = nil
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("changeset: expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("changeset: invalid key %v", keyTok)
		}
		var change FieldChange
		if err := dec.Decode(&change); err != nil {
			return err
		}
		c.Set(key, change)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
