package storage

import (
	"bytes"
	"testing"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite()
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteGetSet(t *testing.T) {
	s := newSQLite(t)

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	if err := s.Set(KeyCategories, []byte(`[{"id":"c1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Upsert replaces.
	if err := s.Set(KeyCategories, []byte(`[]`)); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	v, ok, err := s.Get(KeyCategories)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`[]`)) {
		t.Errorf("Get = %q", v)
	}
}

func TestSQLiteRemoveAndClear(t *testing.T) {
	s := newSQLite(t)
	s.Set("a", []byte("1"))
	s.Set("b", []byte("2"))

	if err := s.Remove("a", "never-there"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Error("removed key still present")
	}
	if _, ok, _ := s.Get("b"); !ok {
		t.Error("unrelated key removed")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	size, err := s.BytesInUse()
	if err != nil {
		t.Fatalf("BytesInUse: %v", err)
	}
	if size != 0 {
		t.Errorf("BytesInUse after Clear = %d", size)
	}
}

func TestSQLiteExportImport(t *testing.T) {
	src := newSQLite(t)
	src.Set(KeyPrompts, []byte(`[{"id":"p1"}]`))
	src.Set(KeySettings, []byte(`{"theme":"dark"}`))

	blob, err := src.ExportBytes()
	if err != nil {
		t.Fatalf("ExportBytes: %v", err)
	}

	dst := newSQLite(t)
	dst.Set("stale", []byte("gone after import"))
	if err := dst.ImportBytes(blob); err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}

	if _, ok, _ := dst.Get("stale"); ok {
		t.Error("import kept pre-existing key")
	}
	v, ok, err := dst.Get(KeyPrompts)
	if err != nil || !ok {
		t.Fatalf("Get after import: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`[{"id":"p1"}]`)) {
		t.Errorf("round-tripped value = %q", v)
	}

	// Empty payload leaves everything alone.
	if err := dst.ImportBytes(nil); err != nil {
		t.Fatalf("ImportBytes empty: %v", err)
	}
	if _, ok, _ := dst.Get(KeySettings); !ok {
		t.Error("empty import wiped data")
	}
}
