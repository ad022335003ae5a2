package cli

import (
        "fmt"

        "devtour/internal/docs"

        "github.com/charmbracelet/glamour"
        "github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
        var raw bool
        var render bool

        cmd := &cobra.Command{
                Use:   "docs [topic]",
                Short: "Show short guides",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        if len(args) == 0 {
                                return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
                        }

                        topic := args[0]
                        body, ok := docs.Get(topic)
                        if !ok {
                                return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `devtour docs` to list topics)", topic))
                        }

                        if render {
                                style := app.config().TUIStyle()
                                if style == "" {
                                        style = "dark"
                                }
                                out, err := glamour.Render(body, style)
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                _, err = fmt.Fprint(cmd.OutOrStdout(), out)
                                return err
                        }
                        if raw {
                                _, err := fmt.Fprint(cmd.OutOrStdout(), body)
                                return err
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
                },
        }

        cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
        cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
        return cmd
}
