package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// TemplateData is the data bound into a template. It is either a flat
// string map, used by the #key# substitution pass, or a raw JSON document,
// used as the root context of card expansion. A document is also usable as
// a flat map: its top-level scalar members are stringified.
//
// Go callers pick the member with FlatData or DocumentData. On the wire the
// member follows from the shape of the value: an object whose members are
// all strings decodes as a flat map, anything else as a document. Both
// members render the same for such an object.
type TemplateData struct {
	flat map[string]string
	doc  json.RawMessage
}

// FlatData builds TemplateData from a string map.
func FlatData(m map[string]string) TemplateData {
	return TemplateData{flat: maps.Clone(m)}
}

// DocumentData builds TemplateData from a JSON document.
func DocumentData(doc json.RawMessage) TemplateData {
	return TemplateData{doc: bytes.Clone(doc)}
}

// IsZero reports whether no data was supplied.
func (d TemplateData) IsZero() bool {
	return d.flat == nil && len(d.doc) == 0
}

// IsDocument reports whether d was supplied as a JSON document.
func (d TemplateData) IsDocument() bool {
	return len(d.doc) > 0
}

// Document returns d as a JSON document. Flat data is encoded as an object.
func (d TemplateData) Document() (json.RawMessage, error) {
	if d.IsDocument() {
		return bytes.Clone(d.doc), nil
	}
	if d.flat == nil {
		return nil, nil
	}
	b, err := json.Marshal(d.flat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return b, nil
}

// Flat returns d as a string map. Document members that are strings,
// numbers or booleans are kept; null becomes "" and nested values are
// skipped since they cannot be substituted into a flat placeholder.
func (d TemplateData) Flat() (map[string]string, error) {
	if !d.IsDocument() {
		return maps.Clone(d.flat), nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(d.doc, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	out := make(map[string]string, len(members))
	for k, raw := range members {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = string(bytes.TrimSpace(raw))
		}
	}
	return out, nil
}

func (d TemplateData) MarshalJSON() ([]byte, error) {
	if d.IsDocument() {
		return d.doc, nil
	}
	if d.flat == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.flat)
}

// UnmarshalJSON accepts an object, or a string holding a JSON object. See
// TemplateData for how the member is chosen.
func (d *TemplateData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = TemplateData{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		if s == "" {
			*d = TemplateData{}
			return nil
		}
		b = []byte(s)
	}

	if !json.Valid(b) {
		return fmt.Errorf("%w: template data is not valid JSON", ErrInvalidTemplate)
	}
	if flat, ok := stringObject(b); ok {
		*d = TemplateData{flat: flat}
		return nil
	}
	*d = TemplateData{doc: bytes.Clone(b)}
	return nil
}

// stringObject decodes b as an object of string members.
func stringObject(b []byte) (map[string]string, bool) {
	if b[0] != '{' {
		return nil, false
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false
	}
	return m, true
}
