package cli

import (
        "path/filepath"
        "strings"

        "devtour/internal/mutate"
        "devtour/internal/scan"

        "github.com/spf13/cobra"
)

func newScanCmd(app *App) *cobra.Command {
        var importName string
        var tests bool

        cmd := &cobra.Command{
                Use:   "scan [dir]",
                Short: "Find //devtour:<order> markers in Go sources (default: project root)",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        dir := s.Root
                        if len(args) == 1 {
                                dir = args[0]
                        }
                        dir, err = filepath.Abs(dir)
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        entries, err := scan.Scan(cmd.Context(), dir, scan.Options{Logger: app.logger(), IncludeTests: tests})
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        // Entry files become project-relative so they can serve as steps.
                        for i := range entries {
                                rel, err := s.RelativePath(filepath.Join(dir, filepath.FromSlash(entries[i].File)))
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                entries[i].File = rel
                        }

                        if strings.TrimSpace(importName) == "" {
                                outline := make([]string, 0, len(entries))
                                for _, e := range entries {
                                        outline = append(outline, e.Format())
                                }
                                return writeOut(cmd, app, map[string]any{
                                        "data": entries,
                                        "meta": map[string]any{"outline": outline},
                                        "_hints": []string{"devtour scan --import <tour name>"},
                                })
                        }

                        steps := make([]mutate.AddStepInput, 0, len(entries))
                        for _, e := range entries {
                                desc := "`" + e.Name + "`"
                                if e.Description != "" {
                                        desc += " " + e.Description
                                }
                                steps = append(steps, mutate.AddStepInput{File: e.File, Line: e.Line, Description: desc})
                        }
                        t, err := cs.ImportTour(importName, steps)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": t})
                },
        }
        cmd.Flags().StringVar(&importName, "import", "", "Create a tour with this name from the markers found")
        cmd.Flags().BoolVar(&tests, "tests", false, "Include _test.go files")
        return cmd
}
