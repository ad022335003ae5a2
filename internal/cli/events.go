package cli

import (
        "github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
        var limit int

        cmd := &cobra.Command{
                Use:   "events",
                Short: "Show the local activity log (oldest-first)",
                RunE: func(cmd *cobra.Command, args []string) error {
                        s, err := projectStore(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        evs, err := s.ReadEvents(cmd.Context(), limit)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": evs})
                },
        }
        cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
        return cmd
}
