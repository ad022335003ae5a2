package cli

import (
        "devtour/internal/store"

        "github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "config",
                Short: "Show or change global settings (~/.devtour/config.json)",
        }

        cmd.AddCommand(&cobra.Command{
                Use:   "show",
                Short: "Show the global config",
                RunE: func(cmd *cobra.Command, args []string) error {
                        path, err := store.ConfigPath()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{
                                "data": app.config(),
                                "meta": map[string]any{"path": path, "keys": store.ConfigKeys},
                        })
                },
        })

        cmd.AddCommand(&cobra.Command{
                Use:   "set <key> [value]",
                Short: "Set a config key (omit the value to clear it)",
                Args:  cobra.RangeArgs(1, 2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cfg, err := store.LoadConfig()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        value := ""
                        if len(args) == 2 {
                                value = args[1]
                        }
                        if err := cfg.Set(args[0], value); err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := store.SaveConfig(cfg); err != nil {
                                return writeErr(cmd, err)
                        }
                        app.cfg = cfg
                        return writeOut(cmd, app, map[string]any{"data": cfg})
                },
        })
        return cmd
}
