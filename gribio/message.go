// Package gribio rebuilds GRIB messages from the JSON output of ecCodes'
// grib_dump.
//
// grib_dump -j prints every message as an array of {"key": ..., "value": ...}
// objects wrapped in a {"messages": [...]} envelope. When the output is read
// line by line the envelope is never complete until the process exits, so the
// streaming path (Accumulator, ReadMessages) parses one key/value fragment at a
// time and treats a fragment that fails to parse as the boundary between two
// messages. DecodeAll handles the same output buffered in full.
package gribio

import (
	"bytes"
	"encoding/json"

	"golang.org/x/exp/maps"
)

// Message is a single decoded GRIB message keyed by ecCodes key name.
//
// Values are one of int64, float64, string, []*float64 (nil entries are missing
// values) or, for anything else, the decoded JSON value with numbers
// normalized the same way. Callers may replace "values" with projected points.
type Message map[string]any

// ValuesKey is the key holding the data values of a message.
const ValuesKey = "values"

// Clone returns a copy of m. Field values are shared.
func (m Message) Clone() Message {
	return maps.Clone(m)
}

// Int returns the integer value of key.
func (m Message) Int(key string) (int64, bool) {
	switch v := m[key].(type) {
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Float returns the numeric value of key as a float64.
func (m Message) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// String returns the string value of key.
func (m Message) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Values returns the data values of the message, if it carries a numeric array.
func (m Message) Values() ([]*float64, bool) {
	v, ok := m[ValuesKey].([]*float64)
	return v, ok
}

// decodeValue decodes raw JSON and normalizes numbers: integers become int64,
// everything else float64, and arrays of numbers and nulls become []*float64.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		return normalizeNumber(x)
	case []any:
		if floats, ok := floatArray(x); ok {
			return floats
		}
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	}
	return v
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		// Out of range for float64; keep the literal.
		return n.String()
	}
	return f
}

func floatArray(arr []any) ([]*float64, bool) {
	out := make([]*float64, len(arr))
	for i, e := range arr {
		switch n := e.(type) {
		case nil:
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, false
			}
			out[i] = &f
		default:
			return nil, false
		}
	}
	return out, true
}
