package credential

import (
	"path/filepath"
	"testing"

	"github.com/jwulff/groqscribe/internal/logging"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "session.sqlite"), logging.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func checkStore(t *testing.T, s Store) {
	t.Helper()

	if tok, ok := s.Read(); ok {
		t.Fatalf("new store returned %q, want absent", tok)
	}

	s.Save("gsk_first")
	tok, ok := s.Read()
	if !ok || tok != "gsk_first" {
		t.Errorf("Read() = %q, %v, want %q, true", tok, ok, "gsk_first")
	}

	s.Save("gsk_second")
	tok, _ = s.Read()
	if tok != "gsk_second" {
		t.Errorf("after overwrite Read() = %q, want %q", tok, "gsk_second")
	}

	s.Clear()
	if tok, ok := s.Read(); ok {
		t.Errorf("after Clear Read() = %q, want absent", tok)
	}

	// Clearing twice is harmless.
	s.Clear()
}

func TestMemoryStore(t *testing.T) {
	checkStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	checkStore(t, openTestStore(t))
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")

	first, err := OpenSQLite(path, logging.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first.Save("gsk_persisted")
	first.Close()

	second, err := OpenSQLite(path, logging.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	tok, ok := second.Read()
	if !ok || tok != "gsk_persisted" {
		t.Errorf("Read() = %q, %v, want %q, true", tok, ok, "gsk_persisted")
	}
}

func TestSQLiteEmptyTokenIsPresent(t *testing.T) {
	store := openTestStore(t)
	store.Save("")

	tok, ok := store.Read()
	if !ok || tok != "" {
		t.Errorf("Read() = %q, %v, want empty, true", tok, ok)
	}
}
