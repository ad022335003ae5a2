// Package watch turns external edits of the tour document into store reloads.
package watch

import (
        "context"
        "fmt"
        "io"
        "log/slog"
        "os"
        "path/filepath"
        "time"

        "github.com/fsnotify/fsnotify"
)

// Reloader is implemented by *tours.CollectionStore.
type Reloader interface {
        Reload() error
}

type Options struct {
        // Debounce is the quiet period before a reload. Editors and atomic
        // renames produce several events per save.
        Debounce time.Duration
        Logger   *slog.Logger
        // OnReload runs after every reload with its result.
        OnReload func(error)
}

type Watcher struct {
        path     string
        fsw      *fsnotify.Watcher
        reloader Reloader
        log      *slog.Logger
        onReload func(error)
        deb      *Debouncer
}

// New watches path (the document file). The parent directory must exist; the
// file itself may be created later.
func New(path string, r Reloader, opts Options) (*Watcher, error) {
        dir := filepath.Dir(path)
        if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
                return nil, fmt.Errorf("watch %s: directory not found", dir)
        }
        fsw, err := fsnotify.NewWatcher()
        if err != nil {
                return nil, err
        }
        if err := fsw.Add(dir); err != nil {
                _ = fsw.Close()
                return nil, err
        }
        w := &Watcher{
                path:     filepath.Clean(path),
                fsw:      fsw,
                reloader: r,
                log:      opts.Logger,
                onReload: opts.OnReload,
        }
        if w.log == nil {
                w.log = slog.New(slog.NewTextHandler(io.Discard, nil))
        }
        w.deb = NewDebouncer(opts.Debounce, w.reload)
        return w, nil
}

func (w *Watcher) reload() {
        err := w.reloader.Reload()
        if err != nil {
                w.log.Warn("reload failed", "path", w.path, "err", err)
        } else {
                w.log.Debug("document reloaded", "path", w.path)
        }
        if w.onReload != nil {
                w.onReload(err)
        }
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
        if filepath.Clean(ev.Name) != w.path {
                return false
        }
        return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Run delivers reloads until ctx is done or the watcher fails, then closes it.
func (w *Watcher) Run(ctx context.Context) error {
        defer w.close()
        for {
                select {
                case <-ctx.Done():
                        return nil
                case ev, ok := <-w.fsw.Events:
                        if !ok {
                                return nil
                        }
                        if w.relevant(ev) {
                                w.log.Debug("document changed", "op", ev.Op.String())
                                w.deb.Trigger()
                        }
                case err, ok := <-w.fsw.Errors:
                        if !ok {
                                return nil
                        }
                        w.log.Error("watch error", "err", err)
                        return err
                }
        }
}

func (w *Watcher) close() {
        w.deb.Stop()
        _ = w.fsw.Close()
}
