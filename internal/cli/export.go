package cli

import (
        "devtour/internal/publish"

        "github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
        var to string
        var tourID string
        var overwrite bool
        var noCode bool
        var asHTML bool

        cmd := &cobra.Command{
                Use:   "export",
                Short: "Write tours as Markdown (or HTML) files",
                RunE: func(cmd *cobra.Command, args []string) error {
                        cs, s, err := openProject(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        render := publish.RenderOptions{Root: s.Root, Context: app.config().Context()}
                        if noCode {
                                render.Root = ""
                        }
                        res, err := publish.WriteTours(cs.Snapshot(), to, publish.WriteOptions{
                                TourID:    tourID,
                                Overwrite: overwrite,
                                HTML:      asHTML,
                                Render:    render,
                        })
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": res})
                },
        }
        cmd.Flags().StringVar(&to, "to", "", "Output directory")
        cmd.Flags().StringVar(&tourID, "tour", "", "Export only this tour")
        cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
        cmd.Flags().BoolVar(&noCode, "no-code", false, "Skip code excerpts")
        cmd.Flags().BoolVar(&asHTML, "html", false, "Write HTML pages instead of Markdown")
        _ = cmd.MarkFlagRequired("to")
        return cmd
}
