package cli

import (
        "context"
        "fmt"
        "os/signal"
        "syscall"
        "time"

        "devtour/internal/tours"
        "devtour/internal/watch"

        "github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
        var debounce time.Duration

        cmd := &cobra.Command{
                Use:   "watch",
                Short: "Watch the tour document and report external changes",
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := s.EnsureParentDirectory(); err != nil {
                                return writeErr(cmd, err)
                        }
                        out := cmd.OutOrStdout()
                        cs.Subscribe(func(ch tours.Change) {
                                steps := 0
                                for _, t := range ch.Collection.Tours {
                                        steps += len(t.Steps)
                                }
                                fmt.Fprintf(out, "%s %s: %d tours, %d steps\n", time.Now().Format(time.TimeOnly), ch.Op, len(ch.Collection.Tours), steps)
                        })
                        w, err := watch.New(s.DocumentPath(), cs, watch.Options{Debounce: debounce, Logger: app.logger()})
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        ctx := cmd.Context()
                        if ctx == nil {
                                ctx = context.Background()
                        }
                        ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
                        defer stop()
                        fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", s.DocumentPath())
                        if err := w.Run(ctx); err != nil {
                                return writeErr(cmd, err)
                        }
                        return nil
                },
        }
        cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Quiet period before reloading")
        return cmd
}
