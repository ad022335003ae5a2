package cli

import (
        "github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "init",
                Short: "Create .devtour/ in the project root",
                RunE: func(cmd *cobra.Command, args []string) error {
                        s, err := projectStore(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        c, err := s.Init()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        app.logger().Debug("initialized", "path", s.DocumentPath())
                        return writeOut(cmd, app, map[string]any{
                                "data": map[string]any{
                                        "root":     s.Root,
                                        "document": s.DocumentPath(),
                                        "tours":    len(c.Tours),
                                },
                        })
                },
        }
        return cmd
}
