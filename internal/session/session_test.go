package session

import (
	"testing"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	docs, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return storage.NewStore(docs, nil, logger.Nop())
}

func TestSessionStartsEmpty(t *testing.T) {
	s := New()
	if _, _, ok := s.Current(); ok {
		t.Error("new session should have no active project")
	}
	if got := s.Resolve(""); got != "" {
		t.Errorf("Resolve on empty session = %q", got)
	}
}

func TestSwitchProjectValidatesAgainstStore(t *testing.T) {
	store := setupStore(t)
	s := New()

	if _, err := s.SwitchProject(store, "ghost"); !models.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, _, ok := s.Current(); ok {
		t.Error("failed switch should not activate a project")
	}

	if _, err := store.CreateProject("My Novel", "", ""); err != nil {
		t.Fatal(err)
	}
	proj, err := s.SwitchProject(store, "my_novel")
	if err != nil {
		t.Fatal(err)
	}
	if proj.Name != "My Novel" {
		t.Errorf("Name = %q", proj.Name)
	}

	id, name, ok := s.Current()
	if !ok || id != "my_novel" || name != "My Novel" {
		t.Errorf("Current = %q, %q, %v", id, name, ok)
	}
}

func TestResolvePrefersExplicitID(t *testing.T) {
	store := setupStore(t)
	s := New()
	if _, err := store.CreateProject("Active", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SwitchProject(store, "active"); err != nil {
		t.Fatal(err)
	}

	if got := s.Resolve("other"); got != "other" {
		t.Errorf("Resolve(other) = %q", got)
	}
	if got := s.Resolve(""); got != "active" {
		t.Errorf("Resolve empty = %q", got)
	}
}

func TestClear(t *testing.T) {
	store := setupStore(t)
	s := New()
	if _, err := store.CreateProject("Active", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SwitchProject(store, "active"); err != nil {
		t.Fatal(err)
	}

	s.Clear()
	if _, _, ok := s.Current(); ok {
		t.Error("Clear should drop the active project")
	}
}
