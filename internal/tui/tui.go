package tui

import (
        "context"
        "io"
        "log/slog"

        "devtour/internal/store"
        "devtour/internal/tours"
        "devtour/internal/watch"

        tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
        Store   *tours.CollectionStore
        Project store.Store
        Config  *store.GlobalConfig
        Logger  *slog.Logger
}

// Run starts the walkthrough UI. External edits of the document are picked up
// by a watcher and reloaded into the store while the program runs.
func Run(opts Options) error {
        if opts.Logger == nil {
                opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
        }
        applyColorProfilePreference()

        m := newModel(opts)
        p := tea.NewProgram(m, tea.WithAltScreen())

        // Subscribers run inside store mutations, which may themselves run inside
        // Update; Send must not block the event loop.
        unsubscribe := opts.Store.Subscribe(func(ch tours.Change) {
                go p.Send(collectionChangedMsg{op: ch.Op})
        })
        defer unsubscribe()

        ctx, cancel := context.WithCancel(context.Background())
        defer cancel()
        if err := opts.Project.EnsureParentDirectory(); err == nil {
                w, err := watch.New(opts.Project.DocumentPath(), opts.Store, watch.Options{Logger: opts.Logger})
                if err != nil {
                        opts.Logger.Warn("live reload disabled", "err", err)
                } else {
                        go func() { _ = w.Run(ctx) }()
                }
        }

        _, err := p.Run()
        return err
}
