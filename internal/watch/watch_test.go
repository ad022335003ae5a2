package watch

import (
        "context"
        "os"
        "path/filepath"
        "sync/atomic"
        "testing"
        "time"
)

type countingReloader struct {
        n  atomic.Int32
        ch chan struct{}
}

func (r *countingReloader) Reload() error {
        r.n.Add(1)
        select {
        case r.ch <- struct{}{}:
        default:
        }
        return nil
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
        var n atomic.Int32
        done := make(chan struct{}, 4)
        d := NewDebouncer(30*time.Millisecond, func() {
                n.Add(1)
                done <- struct{}{}
        })
        for i := 0; i < 10; i++ {
                d.Trigger()
        }
        select {
        case <-done:
        case <-time.After(2 * time.Second):
                t.Fatalf("debounced func never ran")
        }
        time.Sleep(100 * time.Millisecond)
        if got := n.Load(); got != 1 {
                t.Fatalf("expected 1 run, got %d", got)
        }
}

func TestDebouncer_StopDropsPending(t *testing.T) {
        var n atomic.Int32
        d := NewDebouncer(20*time.Millisecond, func() { n.Add(1) })
        d.Trigger()
        d.Stop()
        d.Trigger()
        time.Sleep(80 * time.Millisecond)
        if n.Load() != 0 {
                t.Fatalf("stopped debouncer ran")
        }
}

func TestWatcher_ReloadsOnDocumentWrite(t *testing.T) {
        dir := t.TempDir()
        path := filepath.Join(dir, "devtour.json")
        if err := os.WriteFile(path, []byte(`{"tours": []}`), 0o644); err != nil {
                t.Fatal(err)
        }

        r := &countingReloader{ch: make(chan struct{}, 1)}
        var reloadErrs atomic.Int32
        w, err := New(path, r, Options{Debounce: 20 * time.Millisecond, OnReload: func(err error) {
                if err != nil {
                        reloadErrs.Add(1)
                }
        }})
        if err != nil {
                t.Fatalf("New: %v", err)
        }
        ctx, cancel := context.WithCancel(context.Background())
        defer cancel()
        go func() { _ = w.Run(ctx) }()

        // Unrelated files in the directory are ignored.
        if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
                t.Fatal(err)
        }
        time.Sleep(100 * time.Millisecond)
        if r.n.Load() != 0 {
                t.Fatalf("unrelated file triggered reload")
        }

        if err := os.WriteFile(path, []byte(`{"tours": [{"name": "A"}]}`), 0o644); err != nil {
                t.Fatal(err)
        }
        select {
        case <-r.ch:
        case <-time.After(3 * time.Second):
                t.Fatalf("no reload after document write")
        }
        if reloadErrs.Load() != 0 {
                t.Fatalf("unexpected reload error")
        }
}

func TestNew_MissingDirectory(t *testing.T) {
        if _, err := New(filepath.Join(t.TempDir(), "nope", "devtour.json"), &countingReloader{}, Options{}); err == nil {
                t.Fatalf("expected error for missing directory")
        }
}
