package cli

import (
        "fmt"
        "strings"

        "devtour/internal/model"
        "devtour/internal/mutate"

        "github.com/spf13/cobra"
)

type tourSummary struct {
        ID     string `json:"id"`
        Name   string `json:"name"`
        Steps  int    `json:"steps"`
        Active bool   `json:"active"`
}

func summarizeTour(t model.Tour, activeID string) tourSummary {
        return tourSummary{ID: t.ID, Name: t.Name, Steps: len(t.Steps), Active: t.ID == activeID}
}

func newToursCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:     "tours",
                Aliases: []string{"tour"},
                Short:   "Manage tours",
        }

        cmd.AddCommand(&cobra.Command{
                Use:   "list",
                Short: "List tours",
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        active, _ := cs.PeekActiveTour()
                        out := []tourSummary{}
                        for _, t := range cs.Snapshot().Tours {
                                out = append(out, summarizeTour(t, active.ID))
                        }
                        return writeOut(cmd, app, map[string]any{"data": out})
                },
        })

        cmd.AddCommand(&cobra.Command{
                Use:   "show [tour-id]",
                Short: "Show a tour and its steps (default: active tour)",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        var t model.Tour
                        var ok bool
                        if len(args) == 1 {
                                t, ok = cs.Tour(strings.TrimSpace(args[0]))
                                if !ok {
                                        return writeErr(cmd, mutate.NotFoundError{Kind: "tour", ID: args[0]})
                                }
                        } else if t, ok = cs.PeekActiveTour(); !ok {
                                return writeErr(cmd, fmt.Errorf("no tours yet (run `devtour tours create <name>`)"))
                        }
                        t.Steps = t.SortedSteps()
                        active, _ := cs.PeekActiveTour()
                        return writeOut(cmd, app, map[string]any{
                                "data": t,
                                "meta": map[string]any{"active": t.ID == active.ID},
                        })
                },
        })

        cmd.AddCommand(&cobra.Command{
                Use:   "create <name>",
                Short: "Create a tour and make it active",
                Args:  cobra.MinimumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        t, err := cs.CreateTour(strings.Join(args, " "))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": t})
                },
        })

        cmd.AddCommand(&cobra.Command{
                Use:   "use <tour-id>",
                Short: "Set the active tour",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        id := strings.TrimSpace(args[0])
                        t, ok := cs.Tour(id)
                        if !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "tour", ID: id})
                        }
                        changed, err := cs.SetActiveTour(id)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": summarizeTour(t, id),
                                "meta": map[string]any{"changed": changed},
                        })
                },
        })

        cmd.AddCommand(&cobra.Command{
                Use:   "rename <tour-id> <name>",
                Short: "Rename a tour",
                Args:  cobra.MinimumNArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        t, err := cs.RenameTour(strings.TrimSpace(args[0]), strings.Join(args[1:], " "))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": summarizeTour(t, cs.Snapshot().ActiveTourID)})
                },
        })

        var yes bool
        deleteCmd := &cobra.Command{
                Use:   "delete <tour-id>",
                Short: "Delete a tour and all of its steps",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        id := strings.TrimSpace(args[0])
                        t, ok := cs.Tour(id)
                        if !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "tour", ID: id})
                        }
                        if !yes {
                                ok, err := terminal(cmd, app, s).Confirm(fmt.Sprintf("Delete tour %q and its %d steps?", t.Name, len(t.Steps)))
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                if !ok {
                                        return writeOut(cmd, app, map[string]any{"data": nil, "meta": map[string]any{"cancelled": true}})
                                }
                        }
                        removed, err := cs.DeleteTour(id)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": summarizeTour(removed, ""),
                                "meta": map[string]any{"activeTourId": cs.Snapshot().ActiveTourID},
                        })
                },
        }
        deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
        cmd.AddCommand(deleteCmd)

        return cmd
}
