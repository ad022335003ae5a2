package scan

import (
        "context"
        "errors"
        "os"
        "path/filepath"
        "testing"
)

func writeGo(t *testing.T, root, rel, src string) {
        t.Helper()
        p := filepath.Join(root, filepath.FromSlash(rel))
        if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
                t.Fatal(err)
        }
        if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
                t.Fatal(err)
        }
}

const component = `package fake

//devtour:1 Fake type for testing
type Component struct{}

// Initialize sets things up.
//
//devtour:2 Fake method for testing
func (c *Component) Initialize() {}

//devtour:notanumber
func ignored() {}

type (
        //devtour:3
        Grouped int
)
`

func TestScan_OrdersTypesAndMethods(t *testing.T) {
        root := t.TempDir()
        writeGo(t, root, "fake/component.go", component)
        writeGo(t, root, "cmd/main.go", "package main\n\n//devtour:0 Start here\nfunc main() {}\n")
        writeGo(t, root, "vendor/x/x.go", "package x\n\n//devtour:0 vendored\nfunc X() {}\n")
        writeGo(t, root, "fake/component_test.go", "package fake\n\n//devtour:9 test only\nfunc helper() {}\n")
        writeGo(t, root, "broken.go", "package broken\nfunc {")

        got, err := Scan(context.Background(), root, Options{})
        if err != nil {
                t.Fatalf("Scan: %v", err)
        }
        want := []string{
                "🔧 main()  // Start here",
                "🧱 Component  // Fake type for testing",
                "🔧 Component.Initialize()  // Fake method for testing",
                "🧱 Grouped",
        }
        if len(got) != len(want) {
                t.Fatalf("got %d entries: %#v", len(got), got)
        }
        for i, w := range want {
                if got[i].Format() != w {
                        t.Fatalf("entry %d = %q, want %q", i, got[i].Format(), w)
                }
        }
        if got[1].File != "fake/component.go" || got[1].Line != 4 {
                t.Fatalf("unexpected location %s:%d", got[1].File, got[1].Line)
        }
        if got[2].Line != 9 {
                t.Fatalf("method should point at its func line, got %d", got[2].Line)
        }

        withTests, err := Scan(context.Background(), root, Options{IncludeTests: true})
        if err != nil || len(withTests) != 5 {
                t.Fatalf("expected test files included, got %d (%v)", len(withTests), err)
        }
}

func TestScan_NoMarkers(t *testing.T) {
        root := t.TempDir()
        writeGo(t, root, "a.go", "package a\n\nfunc A() {}\n")
        if _, err := Scan(context.Background(), root, Options{}); !errors.Is(err, ErrNoEntries) {
                t.Fatalf("expected ErrNoEntries, got %v", err)
        }
}

func TestScan_Cancelled(t *testing.T) {
        root := t.TempDir()
        writeGo(t, root, "a.go", component)
        ctx, cancel := context.WithCancel(context.Background())
        cancel()
        if _, err := Scan(ctx, root, Options{}); !errors.Is(err, context.Canceled) {
                t.Fatalf("expected cancellation, got %v", err)
        }
}
