// Package model defines the tagged-union representation of Claude Code
// session log entries: entries, message payloads, content blocks, usage,
// and the unknown-field carryover that keeps the parser forward-compatible
// across assistant-software versions.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnknownFields is an insertion-order-preserving bag of JSON keys a
// variant's struct fields don't account for. Parsers populate it during
// decode; lossless serializers re-emit it after known fields so nothing
// the assistant wrote is ever silently dropped.
type UnknownFields struct {
	keys   []string
	values map[string]json.RawMessage
}

// Set records a key/value pair, preserving first-seen order.
func (u *UnknownFields) Set(key string, value json.RawMessage) {
	if u.values == nil {
		u.values = make(map[string]json.RawMessage)
	}
	if _, exists := u.values[key]; !exists {
		u.keys = append(u.keys, key)
	}
	u.values[key] = value
}

// Len reports how many unknown keys are held.
func (u *UnknownFields) Len() int {
	return len(u.keys)
}

// Keys returns the keys in insertion order.
func (u *UnknownFields) Keys() []string {
	return u.keys
}

// Get returns the raw JSON value for a key.
func (u *UnknownFields) Get(key string) (json.RawMessage, bool) {
	if u.values == nil {
		return nil, false
	}
	v, ok := u.values[key]
	return v, ok
}

// WriteJSON writes ",\"key\":value" pairs (in insertion order) to buf for
// every held key not present in known. Used by lossless serializers to
// re-emit unknown fields after known ones.
func (u *UnknownFields) WriteJSON(buf *bytes.Buffer, known map[string]bool) error {
	for _, k := range u.keys {
		if known[k] {
			continue
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("marshal unknown field key %q: %w", k, err)
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(u.values[k])
	}
	return nil
}

// collectUnknown decodes raw into a generic map, removes the keys in
// known, and returns the remainder as an order-preserving bag. Order is
// recovered by re-scanning raw's top-level keys with a token stream,
// since Go's map decoding does not preserve source order.
func collectUnknown(raw json.RawMessage, known map[string]bool) (UnknownFields, error) {
	var bag UnknownFields
	if len(raw) == 0 {
		return bag, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return bag, fmt.Errorf("decode object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return bag, fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return bag, fmt.Errorf("decode key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return bag, fmt.Errorf("decode value for %q: %w", key, err)
		}

		if known[key] {
			continue
		}
		bag.Set(key, raw)
	}

	return bag, nil
}
