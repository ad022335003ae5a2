package cli

import (
        "fmt"
        "io"
        "log/slog"
        "os"
        "strings"

        "devtour/internal/format"
        "devtour/internal/host"
        "devtour/internal/store"
        "devtour/internal/tours"
        "devtour/internal/tui"

        "github.com/spf13/cobra"
)

type App struct {
        Dir     string
        Format  string
        Pretty  bool
        Verbose bool

        cfg *store.GlobalConfig
        log *slog.Logger
}

func NewRootCmd() *cobra.Command {
        app := &App{}

        cmd := &cobra.Command{
                Use:          "devtour",
                Short:        "DevTour: guided walkthroughs of a codebase (CLI + TUI)",
                SilenceUsage: true,
                Example: strings.TrimSpace(`
  # Start the interactive TUI
  devtour

  # Record a step in the active tour
  devtour steps add internal/server/server.go:42 --description "Requests enter here"

  # Walk the active tour
  devtour start
  devtour next

  # Direct step lookup (shortcut for: devtour steps show <step-id>)
  devtour step-k3xq9a
`),
                RunE: func(cmd *cobra.Command, args []string) error {
                        // No subcommand => interactive TUI.
                        if cmd.HasSubCommands() && len(args) == 0 {
                                return runTUI(cmd, app)
                        }
                        return cmd.Help()
                },
        }

        cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
                cfg, err := store.LoadConfig()
                if err != nil {
                        return writeErr(cmd, err)
                }
                app.cfg = cfg
                if !cmd.Flags().Changed("format") && os.Getenv("DEVTOUR_FORMAT") == "" && cfg.Format != "" {
                        app.Format = cfg.Format
                }
                if !format.Valid(app.Format) {
                        return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|yaml)", app.Format))
                }
                app.log = newLogger(cmd.ErrOrStderr(), app.Verbose)
                return nil
        }

        cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DEVTOUR_DIR", ""), "Project root (default: nearest parent containing .devtour/, else the working directory)")
        cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
        cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DEVTOUR_FORMAT", "json"), "Output format (json|yaml)")
        cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug output to stderr")

        cmd.AddCommand(newInitCmd(app))
        cmd.AddCommand(newDoctorCmd(app))
        cmd.AddCommand(newDocsCmd(app))
        cmd.AddCommand(newToursCmd(app))
        cmd.AddCommand(newStepsCmd(app))
        cmd.AddCommand(newSessionCmds(app)...)
        cmd.AddCommand(newExportCmd(app))
        cmd.AddCommand(newEventsCmd(app))
        cmd.AddCommand(newScanCmd(app))
        cmd.AddCommand(newWatchCmd(app))
        cmd.AddCommand(newConfigCmd(app))

        return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
        cs, s, err := openProject(app)
        if err != nil {
                return writeErr(cmd, err)
        }
        return tui.Run(tui.Options{
                Store:   cs,
                Project: s,
                Config:  app.cfg,
                Logger:  app.log,
        })
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
        if verbose || strings.EqualFold(strings.TrimSpace(os.Getenv("DEVTOUR_LOG")), "debug") {
                return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
        }
        return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func projectStore(app *App) (store.Store, error) {
        dir := strings.TrimSpace(app.Dir)
        if dir == "" {
                d, err := store.DefaultRoot()
                if err != nil {
                        return store.Store{}, err
                }
                dir = d
                app.Dir = d
        }
        return store.Store{Root: dir}, nil
}

// openProject loads the project's tours behind a CollectionStore that records
// mutations in the local event log.
func openProject(app *App) (*tours.CollectionStore, store.Store, error) {
        s, err := projectStore(app)
        if err != nil {
                return nil, s, err
        }
        opts := tours.Options{Logger: app.logger()}
        if store.EventLogEnabled() {
                opts.Events = s
        }
        cs, err := tours.Open(s, opts)
        if err != nil {
                return nil, s, err
        }
        return cs, s, nil
}

func (app *App) logger() *slog.Logger {
        if app.log == nil {
                app.log = newLogger(io.Discard, false)
        }
        return app.log
}

func (app *App) config() *store.GlobalConfig {
        if app.cfg == nil {
                app.cfg = &store.GlobalConfig{}
        }
        return app.cfg
}

// terminal returns the line-oriented host. Its output goes to stderr so stdout
// stays a clean data envelope.
func terminal(cmd *cobra.Command, app *App, s store.Store) *host.Terminal {
        t := host.NewTerminal(s.Root, cmd.InOrStdin(), cmd.ErrOrStderr())
        t.RevealCommand = app.config().Reveal
        t.Context = app.config().Context()
        return t
}

func envOr(k, d string) string {
        if v := os.Getenv(k); v != "" {
                return v
        }
        return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
        return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
        fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
        return err
}
