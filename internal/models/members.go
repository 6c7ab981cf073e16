package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// members is a compact, comma-separated run of JSON object members, e.g.
// `"author":"x","tags":["a"]`, in the order they were read. It is a string
// so that the types holding it stay comparable.
type members string

// appendTo inserts the members before the closing brace of the encoded
// object b.
func (m members) appendTo(b []byte) []byte {
	if m == "" {
		return b
	}
	b = bytes.TrimRight(b, " \n")
	out := make([]byte, 0, len(b)+len(m)+1)
	out = append(out, b[:len(b)-1]...)
	if len(bytes.TrimSpace(b[1:len(b)-1])) > 0 {
		out = append(out, ',')
	}
	out = append(out, m...)
	return append(out, '}')
}

// unknownMembers returns the members of the JSON object b whose names do
// not match known. Names are matched case-insensitively, as encoding/json
// does when filling struct fields.
func unknownMembers(b []byte, known []string) (members, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return "", fmt.Errorf("expected object, got %v", tok)
	}

	var parts []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", err
		}
		if isKnown(name, known) {
			continue
		}

		key, err := marshalNoEscape(name)
		if err != nil {
			return "", err
		}
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, value); err != nil {
			return "", err
		}
		parts = append(parts, string(key)+":"+compacted.String())
	}
	return members(strings.Join(parts, ",")), nil
}

func isKnown(name string, known []string) bool {
	for _, k := range known {
		if strings.EqualFold(name, k) {
			return true
		}
	}
	return false
}

// marshalNoEscape encodes v without escaping <, > and &, so topic HTML is
// stored as written.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
