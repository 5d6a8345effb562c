package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// exerciseStore runs the shared contract against any backend
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Set(KeyEnvironment, "Prod"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, err := s.Get(KeyEnvironment); err != nil || got != "Prod" {
		t.Errorf("Expected 'Prod', got %q (%v)", got, err)
	}

	if err := s.Set(KeyEnvironment, "Staging"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, _ := s.Get(KeyEnvironment); got != "Staging" {
		t.Errorf("Expected last write to win, got %q", got)
	}

	if err := s.Remove(KeyEnvironment); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get(KeyEnvironment); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected key to be removed, got %v", err)
	}
	if err := s.Remove(KeyEnvironment); err != nil {
		t.Errorf("Expected removing a missing key to succeed, got %v", err)
	}

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := SetJSON(s, KeyActiveOrg, payload{Name: "acme", Count: 2}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var got payload
	if err := GetJSON(s, KeyActiveOrg, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Name != "acme" || got.Count != 2 {
		t.Errorf("Unexpected payload %+v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "state.json")))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestFileStore_SeesExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	first := NewFileStore(path)
	second := NewFileStore(path)

	if err := first.Set(KeyAPIToken, "one"); err != nil {
		t.Fatal(err)
	}
	if err := second.Set(KeyAPIToken, "two"); err != nil {
		t.Fatal(err)
	}

	if got, _ := first.Get(KeyAPIToken); got != "two" {
		t.Errorf("Expected re-read to observe the other writer, got %q", got)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Get(KeyEnvironment); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestGetJSON_InvalidValue(t *testing.T) {
	s := NewMemoryStore()
	s.Set(KeyAuthTokens, "not-json")

	var v map[string]any
	if err := GetJSON(s, KeyAuthTokens, &v); err == nil {
		t.Error("Expected decode error")
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Error("Expected unknown backend error")
	}
	s, err := Open("memory", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Expected MemoryStore, got %T", s)
	}
}
