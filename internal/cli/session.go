package cli

import (
        "devtour/internal/model"
        "devtour/internal/session"

        "github.com/spf13/cobra"
)

type sessionStatus struct {
        State  string      `json:"state"`
        TourID string      `json:"tourId,omitempty"`
        Index  int         `json:"index"`
        Total  int         `json:"total"`
        Step   *model.Step `json:"step,omitempty"`
        Label  string      `json:"label,omitempty"`
}

func statusOf(sess *session.Session) sessionStatus {
        out := sessionStatus{
                State:  sess.State().String(),
                TourID: sess.TourID(),
                Index:  sess.Index(),
                Total:  len(sess.Steps()),
        }
        if st, ok := sess.Current(); ok {
                out.Step = &st
                out.Label = st.Label()
        }
        return out
}

// newSessionCmds builds the walkthrough commands. The cursor is saved in
// .devtour/.local/session.json between invocations.
func newSessionCmds(app *App) []*cobra.Command {
        mk := func(use string, aliases []string, short string, act func(*session.Session)) *cobra.Command {
                return &cobra.Command{
                        Use:     use,
                        Aliases: aliases,
                        Short:   short,
                        Args:    cobra.NoArgs,
                        RunE: func(cmd *cobra.Command, args []string) error {
                                cs, s, err := openProject(app)
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                sess := session.New(cs, terminal(cmd, app, s))
                                saved, err := s.LoadSessionState()
                                if err != nil {
                                        app.logger().Warn("session state unreadable", "err", err)
                                }
                                sess.Resume(saved)

                                if act != nil {
                                        act(sess)
                                        if err := s.SaveSessionState(sess.SaveState()); err != nil {
                                                return writeErr(cmd, err)
                                        }
                                }
                                return writeOut(cmd, app, map[string]any{"data": statusOf(sess)})
                        },
                }
        }

        return []*cobra.Command{
                mk("start", nil, "Start the active tour at step 1", (*session.Session).Start),
                mk("next", []string{"n"}, "Go to the next step (starts the tour when idle)", (*session.Session).Next),
                mk("prev", []string{"previous", "p"}, "Go to the previous step (starts the tour when idle)", (*session.Session).Previous),
                mk("stop", nil, "Stop the walkthrough", (*session.Session).Stop),
                mk("current", nil, "Show the current step again", (*session.Session).Show),
                mk("status", nil, "Show the walkthrough position", nil),
        }
}
