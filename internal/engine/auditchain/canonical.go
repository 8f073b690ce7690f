package auditchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize serializes a value deterministically: object keys sorted
// lexicographically at every level, array order preserved, primitives
// JSON-encoded. Two structurally equal values canonicalize identically
// regardless of construction or insertion order.
func Canonicalize(v any) (string, error) {
	decoded, err := normalize(v)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if err := writeCanonical(buf, decoded); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// normalize reduces arbitrary Go values to the generic JSON model
// (map[string]any, []any, json.Number, string, bool, nil) by a marshal
// round trip. Raw JSON inputs are decoded directly.
func normalize(v any) (any, error) {
	var raw []byte
	switch value := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		raw = []byte(value)
	case []byte:
		raw = value
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("canonicalize: %w", err)
		}
		raw = encoded
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("canonicalize: invalid JSON: %w", err)
	}
	return decoded, nil
}

func writeCanonical(buf *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeJSONString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case map[string]any:
		return writeObject(buf, v)
	case []any:
		return writeArray(buf, v)
	default:
		return fmt.Errorf("canonicalize: unsupported type %T", value)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(buf, k)
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexLower[r>>4])
				buf.WriteByte(hexLower[r&0x0f])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

var hexLower = []byte("0123456789abcdef")
