package storage

import (
	"bytes"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()

	if _, ok, err := m.Get("missing"); ok || err != nil {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	if err := m.Set(KeyPrompts, []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := m.Get(KeyPrompts)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`[]`)) {
		t.Errorf("Get = %q", v)
	}

	// Mutating the returned slice must not reach the stored value.
	v[0] = 'X'
	again, _, _ := m.Get(KeyPrompts)
	if !bytes.Equal(again, []byte(`[]`)) {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

func TestMemoryRemoveAndClear(t *testing.T) {
	m := NewMemory()
	m.Set("a", []byte("1"))
	m.Set("b", []byte("2"))
	m.Set("c", []byte("3"))

	if err := m.Remove("a", "nope", "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count after Clear = %d", m.Count())
	}
}

func TestMemorySeedAndBytesInUse(t *testing.T) {
	m := NewMemory()
	n := m.Seed(map[string][]byte{
		"ab": []byte("xyz"),
		"cd": []byte("12345"),
	})
	if n != 2 {
		t.Fatalf("Seed = %d, want 2", n)
	}

	size, err := m.BytesInUse()
	if err != nil {
		t.Fatalf("BytesInUse: %v", err)
	}
	if size != int64(2+3+2+5) {
		t.Errorf("BytesInUse = %d, want 12", size)
	}
}
