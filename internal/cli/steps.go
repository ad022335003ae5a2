package cli

import (
        "fmt"
        "os"
        "path/filepath"
        "strconv"
        "strings"

        "devtour/internal/host"
        "devtour/internal/model"
        "devtour/internal/mutate"
        "devtour/internal/store"

        "github.com/spf13/cobra"
)

// splitFileLine parses "path/to/file.go:42". A suffix that is not a positive
// integer stays part of the path.
func splitFileLine(arg string) (string, int) {
        arg = strings.TrimSpace(arg)
        if i := strings.LastIndex(arg, ":"); i > 0 {
                if n, err := strconv.Atoi(arg[i+1:]); err == nil && n > 0 {
                        return arg[:i], n
                }
        }
        return arg, 0
}

// resolveStepFile maps a CLI path argument to a project-relative step file.
// Relative paths that exist under the project root are taken as root-relative;
// anything else is resolved against the working directory.
func resolveStepFile(s store.Store, file string) (string, error) {
        if strings.TrimSpace(file) == "" {
                return "", store.ErrNoTarget
        }
        if !filepath.IsAbs(file) {
                clean := filepath.ToSlash(filepath.Clean(file))
                if clean != ".." && !strings.HasPrefix(clean, "../") {
                        if _, err := os.Stat(s.AbsPath(clean)); err == nil {
                                return store.NormalizeFilePath(clean), nil
                        }
                }
        }
        return s.RelativePath(file)
}

func newStepsCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:     "steps",
                Aliases: []string{"step"},
                Short:   "Manage tour steps",
        }
        cmd.AddCommand(newStepsListCmd(app))
        cmd.AddCommand(newStepsShowCmd(app))
        cmd.AddCommand(newStepsAddCmd(app))
        cmd.AddCommand(newStepsDeleteCmd(app))
        cmd.AddCommand(newStepsDescribeCmd(app))
        cmd.AddCommand(newStepsMoveCmd(app))
        cmd.AddCommand(newStepsAtCmd(app))
        return cmd
}

func newStepsListCmd(app *App) *cobra.Command {
        var tourID string
        cmd := &cobra.Command{
                Use:   "list",
                Short: "List steps of a tour in walk order (default: active tour)",
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        var t model.Tour
                        var ok bool
                        if id := strings.TrimSpace(tourID); id != "" {
                                if t, ok = cs.Tour(id); !ok {
                                        return writeErr(cmd, mutate.NotFoundError{Kind: "tour", ID: id})
                                }
                        } else if t, ok = cs.PeekActiveTour(); !ok {
                                return writeOut(cmd, app, map[string]any{"data": []model.Step{}})
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": t.SortedSteps(),
                                "meta": map[string]any{"tourId": t.ID, "tourName": t.Name},
                        })
                },
        }
        cmd.Flags().StringVar(&tourID, "tour", "", "Tour id")
        return cmd
}

func newStepsShowCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "show <step-id>",
                Short: "Show a step with a code excerpt",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        id := strings.TrimSpace(args[0])
                        st, t, ok := cs.Step(id)
                        if !ok {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "step", ID: id})
                        }
                        position := 0
                        for i, x := range t.SortedSteps() {
                                if x.ID == st.ID {
                                        position = i + 1
                                }
                        }
                        data := map[string]any{
                                "step":     st,
                                "label":    st.Label(),
                                "tour":     summarizeTour(t, cs.Snapshot().ActiveTourID),
                                "position": position,
                        }
                        if st.File != "" {
                                lines, err := host.ReadSnippet(s.AbsPath(st.File), st.Line, app.config().Context())
                                var marked []int
                                for _, other := range cs.StepsForFile(st.File) {
                                        if other.ID != st.ID {
                                                marked = append(marked, other.Line)
                                        }
                                }
                                host.MarkSteps(lines, marked)
                                if err != nil {
                                        app.logger().Debug("snippet unavailable", "file", st.File, "err", err)
                                }
                                if len(lines) > 0 {
                                        data["snippet"] = lines
                                }
                        }
                        return writeOut(cmd, app, map[string]any{"data": data})
                },
        }
}

func newStepsAddCmd(app *App) *cobra.Command {
        var line int
        var description string
        var tourID string
        var pick bool

        cmd := &cobra.Command{
                Use:   "add <file[:line]>",
                Short: "Add a step (default: to the active tour; --pick prompts for description and tour)",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        file, l := splitFileLine(args[0])
                        if cmd.Flags().Changed("line") {
                                l = line
                        }
                        rel, err := resolveStepFile(s, file)
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        if pick {
                                st, added, err := cs.AddStepInteractive(rel, l, terminal(cmd, app, s))
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                if !added {
                                        return writeOut(cmd, app, map[string]any{"data": nil, "meta": map[string]any{"cancelled": true}})
                                }
                                return writeOut(cmd, app, map[string]any{"data": st})
                        }

                        st, err := cs.AddStep(rel, l, description, strings.TrimSpace(tourID))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": st})
                },
        }
        cmd.Flags().IntVar(&line, "line", 0, "Line number (overrides a :line suffix)")
        cmd.Flags().StringVarP(&description, "description", "d", "", "Step description (Markdown)")
        cmd.Flags().StringVar(&tourID, "tour", "", "Target tour id (default: active tour)")
        cmd.Flags().BoolVar(&pick, "pick", false, "Prompt for the description and target tour")
        return cmd
}

func newStepsDeleteCmd(app *App) *cobra.Command {
        var tourID string
        cmd := &cobra.Command{
                Use:   "delete <step-id | file:line>",
                Short: "Delete a step; remaining steps are renumbered",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        id := strings.TrimSpace(args[0])
                        tid := strings.TrimSpace(tourID)
                        if _, _, ok := cs.Step(id); ok {
                                if _, err := cs.DeleteStep(id, tid); err != nil {
                                        return writeErr(cmd, err)
                                }
                                return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
                        }

                        // Not a step id: try a file:line location holding exactly one step.
                        file, line := splitFileLine(id)
                        if line == 0 {
                                return writeErr(cmd, mutate.NotFoundError{Kind: "step", ID: id})
                        }
                        rel, err := resolveStepFile(s, file)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        var candidates []model.Step
                        for _, st := range cs.StepsAt(rel, line) {
                                if tid == "" || st.TourID == tid {
                                        candidates = append(candidates, st)
                                }
                        }
                        switch len(candidates) {
                        case 0:
                                return writeErr(cmd, mutate.NotFoundError{Kind: "step", ID: id})
                        case 1:
                        default:
                                return writeErr(cmd, fmt.Errorf("%d steps at %s; pass a step id or --tour", len(candidates), id))
                        }
                        removed, err := cs.DeleteMatchingStep(candidates[0], tid)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": removed.ID, "deleted": true}})
                },
        }
        cmd.Flags().StringVar(&tourID, "tour", "", "Tour id (default: search all tours)")
        return cmd
}

func newStepsDescribeCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "describe <step-id> <text>",
                Short: "Set a step's description",
                Args:  cobra.MinimumNArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        st, err := cs.UpdateStepDescription(strings.TrimSpace(args[0]), strings.Join(args[1:], " "))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": st})
                },
        }
}

func newStepsMoveCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "move <step-id> <position>",
                Short: "Move a step to a 1-based position within its tour",
                Args:  cobra.ExactArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        pos, err := strconv.Atoi(strings.TrimSpace(args[1]))
                        if err != nil {
                                return writeErr(cmd, fmt.Errorf("invalid position: %q", args[1]))
                        }
                        cs, _, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        st, err := cs.MoveStep(strings.TrimSpace(args[0]), pos)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": st})
                },
        }
}

func newStepsAtCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "at <file[:line]>",
                Short: "List steps of every tour that point into a file (or at one line)",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        file, line := splitFileLine(args[0])
                        rel, err := resolveStepFile(s, file)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        steps := cs.StepsForFile(rel)
                        if line > 0 {
                                steps = cs.StepsAt(rel, line)
                        }
                        out := make([]map[string]any, 0, len(steps))
                        for _, st := range steps {
                                item := map[string]any{"step": st, "label": st.Label()}
                                if t, ok := cs.Tour(st.TourID); ok {
                                        item["tourName"] = t.Name
                                }
                                out = append(out, item)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": out,
                                "meta": map[string]any{"file": rel, "line": line},
                        })
                },
        }
}
