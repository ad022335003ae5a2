package session

import (
        "errors"
        "strings"
        "testing"

        "devtour/internal/host"
        "devtour/internal/model"
        "devtour/internal/store"
        "devtour/internal/tours"
)

type fakeSource struct {
        tour model.Tour
        ok   bool
}

func (f *fakeSource) ActiveTour() (model.Tour, bool) { return f.tour, f.ok }

type notice struct {
        msg string
        sev host.Severity
}

type fakeNav struct {
        revealed  []string
        notices   []notice
        revealErr error
        cleared   int
}

func (n *fakeNav) RevealLocation(file string, line int) error {
        n.revealed = append(n.revealed, model.Step{File: file, Line: line}.Location())
        return n.revealErr
}

func (n *fakeNav) Notify(message string, severity host.Severity) {
        n.notices = append(n.notices, notice{message, severity})
}

func (n *fakeNav) ClearHighlight() { n.cleared++ }

func (n *fakeNav) last() string {
        if len(n.notices) == 0 {
                return ""
        }
        return n.notices[len(n.notices)-1].msg
}

func threeSteps() *fakeSource {
        return &fakeSource{ok: true, tour: model.Tour{ID: "t1", Name: "T", Steps: []model.Step{
                {ID: "c", File: "c.go", Line: 3, Order: 3, TourID: "t1"},
                {ID: "a", File: "a.go", Line: 1, Order: 1, TourID: "t1", Description: "Entry point"},
                {ID: "b", File: "b.go", Line: 2, Order: 2, TourID: "t1"},
        }}}
}

func TestSession_BoundsAtEnd(t *testing.T) {
        nav := &fakeNav{}
        s := New(threeSteps(), nav)
        if s.State() != Idle || s.Index() != -1 {
                t.Fatalf("expected idle on construction")
        }

        var got []int
        s.Start()
        got = append(got, s.Index())
        s.Next()
        got = append(got, s.Index())
        s.Next()
        got = append(got, s.Index())
        s.Next()
        got = append(got, s.Index())

        want := []int{0, 1, 2, 2}
        for i := range want {
                if got[i] != want[i] {
                        t.Fatalf("indices = %v, want %v", got, want)
                }
        }
        if nav.last() != "end of tour" {
                t.Fatalf("expected end of tour notice, got %q", nav.last())
        }
        if len(nav.revealed) != 3 {
                t.Fatalf("expected 3 reveals, got %v", nav.revealed)
        }
}

func TestSession_ProgressMessages(t *testing.T) {
        nav := &fakeNav{}
        s := New(threeSteps(), nav)
        s.Start()
        if nav.last() != "1/3: Entry point" {
                t.Fatalf("unexpected progress %q", nav.last())
        }
        s.Next()
        if nav.last() != "2/3: b.go:2" {
                t.Fatalf("unexpected progress %q", nav.last())
        }
        if nav.revealed[0] != "a.go:1" || nav.revealed[1] != "b.go:2" {
                t.Fatalf("steps revealed out of order: %v", nav.revealed)
        }
}

func TestSession_PreviousAtStart(t *testing.T) {
        nav := &fakeNav{}
        s := New(threeSteps(), nav)
        s.Start()
        s.Previous()
        if s.Index() != 0 || nav.last() != "already at first step" {
                t.Fatalf("index %d, notice %q", s.Index(), nav.last())
        }
        s.Next()
        s.Previous()
        if s.Index() != 0 {
                t.Fatalf("expected index 0, got %d", s.Index())
        }
}

func TestSession_NextWhileIdleStarts(t *testing.T) {
        for _, tc := range []struct {
                name string
                call func(*Session)
        }{
                {"next", (*Session).Next},
                {"previous", (*Session).Previous},
        } {
                t.Run(tc.name, func(t *testing.T) {
                        s := New(threeSteps(), &fakeNav{})
                        tc.call(s)
                        if s.State() != Active || s.Index() != 0 {
                                t.Fatalf("expected start at 0, got %v %d", s.State(), s.Index())
                        }
                })
        }
}

func TestSession_StartWithoutSteps(t *testing.T) {
        nav := &fakeNav{}
        s := New(&fakeSource{}, nav)
        s.Start()
        if s.State() != Idle {
                t.Fatalf("expected idle")
        }
        if len(nav.notices) != 1 || nav.notices[0].sev != host.SeverityWarning || !strings.Contains(nav.notices[0].msg, "no steps") {
                t.Fatalf("unexpected notices %#v", nav.notices)
        }
}

func TestSession_RevealFailureIsReported(t *testing.T) {
        nav := &fakeNav{revealErr: errors.New("no editor")}
        s := New(threeSteps(), nav)
        s.Start()
        if s.State() != Active {
                t.Fatalf("reveal failure must not stop the session")
        }
        if len(nav.notices) != 2 || nav.notices[0].sev != host.SeverityWarning {
                t.Fatalf("expected warning then progress, got %#v", nav.notices)
        }
}

func TestSession_StopClearsHighlight(t *testing.T) {
        nav := &fakeNav{}
        s := New(threeSteps(), nav)
        s.Start()
        s.Stop()
        if s.State() != Idle || s.Index() != -1 || nav.cleared != 1 {
                t.Fatalf("state %v index %d cleared %d", s.State(), s.Index(), nav.cleared)
        }
}

func TestSession_ReloadStepsClamps(t *testing.T) {
        src := threeSteps()
        nav := &fakeNav{}
        s := New(src, nav)
        s.Start()
        s.Next()
        s.Next()
        reveals := len(nav.revealed)

        src.tour.Steps = src.tour.Steps[1:2] // only "a" remains
        s.ReloadSteps()
        if s.State() != Active || s.Index() != 0 {
                t.Fatalf("expected clamped to 0, got %v %d", s.State(), s.Index())
        }
        if len(nav.revealed) != reveals {
                t.Fatalf("reload must not reveal")
        }

        src.tour.Steps = nil
        s.ReloadSteps()
        if s.State() != Idle || nav.cleared != 1 {
                t.Fatalf("empty reload should stop the session")
        }
}

func TestSession_ReloadStepsWhileIdleStaysIdle(t *testing.T) {
        s := New(threeSteps(), &fakeNav{})
        s.ReloadSteps()
        if s.State() != Idle || len(s.Steps()) != 3 {
                t.Fatalf("unexpected state after idle reload")
        }
}

func TestSession_ResumeAndSave(t *testing.T) {
        s := New(threeSteps(), &fakeNav{})
        if got := s.Resume(&store.SessionState{TourID: "t1", StepID: "b", Index: 0}); got != Active {
                t.Fatalf("expected active resume")
        }
        if s.Index() != 1 {
                t.Fatalf("step id should win over index, got %d", s.Index())
        }
        saved := s.SaveState()
        if saved.TourID != "t1" || saved.StepID != "b" || saved.Index != 1 {
                t.Fatalf("unexpected saved state %#v", saved)
        }

        if got := s.Resume(&store.SessionState{TourID: "t1", StepID: "gone", Index: 9}); got != Active || s.Index() != 2 {
                t.Fatalf("expected clamp to last step, got %v %d", got, s.Index())
        }
        if got := s.Resume(&store.SessionState{TourID: "other", Index: 0}); got != Idle {
                t.Fatalf("resume for another tour should be idle")
        }
        if s.SaveState().Index != -1 {
                t.Fatalf("idle session saves index -1")
        }
}

type memDoc struct{ b []byte }

func (d *memDoc) ReadDocument() ([]byte, error) { return d.b, nil }
func (d *memDoc) WriteDocument(b []byte) error  { d.b = append([]byte(nil), b...); return nil }

func TestSession_AttachFollowsStore(t *testing.T) {
        cs, err := tours.Open(&memDoc{}, tours.Options{})
        if err != nil {
                t.Fatal(err)
        }
        s := New(cs, &fakeNav{})
        defer s.Attach(cs)()

        first, err := cs.AddStep("a.go", 1, "", "")
        if err != nil {
                t.Fatal(err)
        }
        if len(s.Steps()) != 1 || s.State() != Idle {
                t.Fatalf("idle session should pick up new steps")
        }
        if _, err := cs.AddStep("b.go", 2, "", ""); err != nil {
                t.Fatal(err)
        }
        s.Start()
        s.Next()
        if s.Index() != 1 {
                t.Fatalf("expected index 1")
        }
        if _, err := cs.DeleteStep(first.ID, ""); err != nil {
                t.Fatal(err)
        }
        if s.State() != Active || s.Index() != 0 {
                t.Fatalf("expected active session clamped to 0, got %v %d", s.State(), s.Index())
        }
        cur, _ := s.Current()
        if cur.File != "b.go" {
                t.Fatalf("unexpected current step %#v", cur)
        }
}

func TestSession_ResumeMatchesStepByContent(t *testing.T) {
        s := New(threeSteps(), &fakeNav{})
        saved := &store.SessionState{
                TourID: "t1",
                StepID: "reissued",
                Step:   &model.Step{ID: "reissued", TourID: "t1", File: "b.go", Line: 2},
                Index:  0,
        }
        if got := s.Resume(saved); got != Active || s.Index() != 1 {
                t.Fatalf("expected resume on b.go:2, got %v %d", got, s.Index())
        }
        if st := s.SaveState(); st.Step == nil || st.Step.ID != "b" {
                t.Fatalf("saved state should carry the current step, got %#v", st.Step)
        }
}
