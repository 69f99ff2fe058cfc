package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh store in a temp dir for a test.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addGuest inserts a guest directly, committing immediately.
func addGuest(t *testing.T, s *Store, name string, host *string) int64 {
	t.Helper()
	tx, err := s.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	id, err := tx.InsertGuest(context.Background(), name, host, nil)
	if err != nil {
		t.Fatalf("InsertGuest(%q) failed: %v", name, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	return id
}

func hostPtr(h string) *string {
	return &h
}
