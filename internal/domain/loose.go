package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The front-end sends loosely typed context: numeric ids, progress as
// "50" or "50%", dependencies as objects. These decoders read what they
// can and leave the rest empty. None of them returns an error.

func decodeAny(data []byte) any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// looseString reads a string, number or bool as text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = looseString(scalarText(decodeAny(data)))
	return nil
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// looseFloat reads a number or a numeric string, with an optional "%".
type looseFloat struct {
	v *float64
}

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	f.v = nil
	var text string
	switch x := decodeAny(data).(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSuffix(strings.TrimSpace(x), "%")
	default:
		return nil
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		f.v = &n
	}
	return nil
}

// looseIDs reads a list of ids given as strings, numbers or {"id": ...}
// objects. A single scalar is a one-element list.
type looseIDs []string

func (l *looseIDs) UnmarshalJSON(data []byte) error {
	*l = nil
	v := decodeAny(data)
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	for _, item := range items {
		if m, isObj := item.(map[string]any); isObj {
			item = m["id"]
		}
		if id := strings.TrimSpace(scalarText(item)); id != "" {
			*l = append(*l, id)
		}
	}
	return nil
}

// looseList keeps the raw entries of an array and ignores anything else.
type looseList []json.RawMessage

func (l *looseList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	*l = raw
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
