package cli

import (
        "bytes"
        "errors"

        "devtour/internal/store"

        "github.com/spf13/cobra"
)

var errDoctorNotCanonical = errors.New("document is not in canonical form (run `devtour doctor --fix`)")

type doctorReport struct {
        Document  string      `json:"document"`
        Shape     store.Shape `json:"shape"`
        Tours     int         `json:"tours"`
        Steps     int         `json:"steps"`
        Canonical bool        `json:"canonical"`
        Fixed     bool        `json:"fixed"`
}

func newDoctorCmd(app *App) *cobra.Command {
        var fix bool
        var fail bool

        cmd := &cobra.Command{
                Use:   "doctor",
                Short: "Check the tour document and optionally rewrite it in canonical form",
                RunE: func(cmd *cobra.Command, args []string) error {
                        s, err := projectStore(app)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        b, err := s.ReadDocument()
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        rep := doctorReport{Document: s.DocumentPath(), Shape: store.DetectShape(b)}
                        if b == nil {
                                rep.Shape = store.ShapeMissing
                        }
                        c := store.Parse(b)
                        rep.Tours = len(c.Tours)
                        for _, t := range c.Tours {
                                rep.Steps += len(t.Steps)
                        }
                        canonical, err := store.Serialize(c)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        rep.Canonical = bytes.Equal(b, canonical)

                        if fix && !rep.Canonical && rep.Shape != store.ShapeMissing {
                                if err := s.WriteDocument(canonical); err != nil {
                                        return writeErr(cmd, err)
                                }
                                rep.Fixed = true
                                app.logger().Info("document rewritten", "shape", string(rep.Shape))
                        }

                        hints := []string{}
                        if !rep.Canonical && !rep.Fixed && rep.Shape != store.ShapeMissing {
                                hints = append(hints, "devtour doctor --fix")
                        }
                        if rep.Shape == store.ShapeMissing {
                                hints = append(hints, "devtour init")
                        }
                        if err := writeOut(cmd, app, map[string]any{"data": rep, "_hints": hints}); err != nil {
                                return err
                        }
                        if fail && !rep.Canonical && !rep.Fixed && rep.Shape != store.ShapeMissing {
                                return errDoctorNotCanonical
                        }
                        return nil
                },
        }

        cmd.Flags().BoolVar(&fix, "fix", false, "Rewrite the document in canonical form")
        cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if the document is not canonical")
        return cmd
}
