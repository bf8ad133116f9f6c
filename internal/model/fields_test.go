package model

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestUnknownFieldsPreservesInsertionOrder(t *testing.T) {
	raw := json.RawMessage(`{"type":"text","z":1,"a":2,"m":3}`)
	bag, err := collectUnknown(raw, map[string]bool{"type": true})
	if err != nil {
		t.Fatalf("collectUnknown: %v", err)
	}
	want := []string{"z", "a", "m"}
	got := bag.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnknownFieldsWriteJSONSkipsKnown(t *testing.T) {
	raw := json.RawMessage(`{"type":"text","text":"x","extra":1}`)
	bag, err := collectUnknown(raw, map[string]bool{"type": true, "text": true})
	if err != nil {
		t.Fatalf("collectUnknown: %v", err)
	}
	var buf bytes.Buffer
	if err := bag.WriteJSON(&buf, map[string]bool{"type": true, "text": true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if buf.String() != `,"extra":1` {
		t.Errorf("WriteJSON = %q, want `,\"extra\":1`", buf.String())
	}
}

func TestUnknownFieldsEmptyBag(t *testing.T) {
	raw := json.RawMessage(`{"type":"text","text":"x"}`)
	bag, err := collectUnknown(raw, map[string]bool{"type": true, "text": true})
	if err != nil {
		t.Fatalf("collectUnknown: %v", err)
	}
	if bag.Len() != 0 {
		t.Errorf("Len() = %d, want 0", bag.Len())
	}
}
