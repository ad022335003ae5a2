package store

import (
        "os"
        "path/filepath"
        "strings"
        "testing"

        "devtour/internal/model"
)

func TestStore_ReadMissingDocumentIsAbsent(t *testing.T) {
        s := Store{Root: t.TempDir()}
        b, err := s.ReadDocument()
        if err != nil {
                t.Fatalf("ReadDocument: %v", err)
        }
        if b != nil {
                t.Fatalf("expected nil bytes for missing document, got %q", b)
        }
        if s.DocumentExists() {
                t.Fatalf("DocumentExists should be false")
        }
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
        s := Store{Root: t.TempDir()}
        c := model.Collection{Tours: []model.Tour{{ID: "tour-a", Name: "A", Steps: []model.Step{{ID: "s1", File: "a.go", Line: 2, Order: 1}}}}}
        if err := s.Save(c); err != nil {
                t.Fatalf("Save: %v", err)
        }
        if !s.DocumentExists() {
                t.Fatalf("expected document to exist")
        }
        got, err := s.Load()
        if err != nil {
                t.Fatalf("Load: %v", err)
        }
        if got.ActiveTourID != "tour-a" || got.Tours[0].Steps[0].TourID != "tour-a" {
                t.Fatalf("unexpected loaded collection %#v", got)
        }
        ents, _ := os.ReadDir(s.Dir())
        for _, e := range ents {
                if strings.HasSuffix(e.Name(), ".tmp") {
                        t.Fatalf("temp file left behind: %s", e.Name())
                }
        }
}

func TestStore_LoadCorruptDocumentIsEmpty(t *testing.T) {
        s := Store{Root: t.TempDir()}
        if err := s.WriteDocument([]byte("{{{")); err != nil {
                t.Fatalf("WriteDocument: %v", err)
        }
        c, err := s.Load()
        if err != nil {
                t.Fatalf("Load: %v", err)
        }
        if len(c.Tours) != 0 {
                t.Fatalf("expected empty collection, got %#v", c)
        }
}

func TestStore_EmptyRootIsNoWorkspace(t *testing.T) {
        s := Store{}
        if _, err := s.ReadDocument(); err != ErrNoWorkspace {
                t.Fatalf("expected ErrNoWorkspace, got %v", err)
        }
        if err := s.WriteDocument([]byte("{}")); err != ErrNoWorkspace {
                t.Fatalf("expected ErrNoWorkspace, got %v", err)
        }
}

func TestDiscoverRoot_WalksUp(t *testing.T) {
        root := t.TempDir()
        if err := os.MkdirAll(filepath.Join(root, ".devtour"), 0o755); err != nil {
                t.Fatal(err)
        }
        nested := filepath.Join(root, "a", "b")
        if err := os.MkdirAll(nested, 0o755); err != nil {
                t.Fatal(err)
        }
        got, ok := DiscoverRoot(nested)
        if !ok || got != root {
                t.Fatalf("DiscoverRoot = %q, %v; want %q", got, ok, root)
        }
}

func TestStore_RelativePath(t *testing.T) {
        root := t.TempDir()
        s := Store{Root: root}
        got, err := s.RelativePath(filepath.Join(root, "internal", "x.go"))
        if err != nil {
                t.Fatalf("RelativePath: %v", err)
        }
        if got != "internal/x.go" {
                t.Fatalf("expected internal/x.go, got %q", got)
        }
        if _, err := s.RelativePath(filepath.Join(filepath.Dir(root), "elsewhere.go")); err == nil {
                t.Fatalf("expected ErrNoTarget for path outside root")
        }
        if _, err := s.RelativePath("  "); err != ErrNoTarget {
                t.Fatalf("expected ErrNoTarget for empty path, got %v", err)
        }
}

func TestStore_InitWritesGitignoreAndCanonicalDocument(t *testing.T) {
        s := Store{Root: t.TempDir()}
        if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
                t.Fatal(err)
        }
        if err := os.WriteFile(s.DocumentPath(), []byte(`[{"file": "a.go", "line": 1}]`), 0o644); err != nil {
                t.Fatal(err)
        }
        c, err := s.Init()
        if err != nil {
                t.Fatalf("Init: %v", err)
        }
        if len(c.Tours) != 1 || c.Tours[0].Name != "Main Tour" {
                t.Fatalf("expected legacy migration, got %#v", c)
        }
        b, _ := os.ReadFile(s.DocumentPath())
        if DetectShape(b) != ShapeCurrent {
                t.Fatalf("expected document rewritten in current shape:\n%s", b)
        }
        if _, err := os.Stat(filepath.Join(s.Dir(), ".gitignore")); err != nil {
                t.Fatalf("expected .gitignore: %v", err)
        }
}

func TestStore_InitBootstrapsMainTour(t *testing.T) {
        s := Store{Root: t.TempDir()}
        c, err := s.Init()
        if err != nil {
                t.Fatalf("Init: %v", err)
        }
        if len(c.Tours) != 1 || c.Tours[0].Name != "Main Tour" || c.ActiveTourID != c.Tours[0].ID {
                t.Fatalf("expected an active Main Tour, got %#v", c)
        }
        loaded, err := s.Load()
        if err != nil {
                t.Fatal(err)
        }
        if len(loaded.Tours) != 1 || loaded.Tours[0].ID != c.Tours[0].ID {
                t.Fatalf("bootstrap not persisted: %#v", loaded)
        }

        // A second init keeps what is there.
        again, err := s.Init()
        if err != nil {
                t.Fatal(err)
        }
        if len(again.Tours) != 1 || again.Tours[0].ID != c.Tours[0].ID {
                t.Fatalf("re-init replaced the document: %#v", again)
        }
}
