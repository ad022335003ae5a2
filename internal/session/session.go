// Package session implements guided navigation over the active tour: a cursor
// that is either idle or positioned on one step.
package session

import (
        "fmt"
        "sync"

        "devtour/internal/host"
        "devtour/internal/model"
        "devtour/internal/store"
        "devtour/internal/tours"
)

type State int

const (
        Idle State = iota
        Active
)

func (s State) String() string {
        if s == Active {
                return "active"
        }
        return "idle"
}

const (
        msgNoSteps    = "no steps in the active tour"
        msgEndOfTour  = "end of tour"
        msgFirstStep  = "already at first step"
        msgRevealFail = "cannot open %s: %v"
)

// StepSource supplies the tour a session walks. *tours.CollectionStore implements it.
type StepSource interface {
        ActiveTour() (model.Tour, bool)
}

type Session struct {
        mu     sync.Mutex
        src    StepSource
        nav    host.Navigator
        tourID string
        steps  []model.Step
        index  int
}

// New returns an idle session over src's active tour.
func New(src StepSource, nav host.Navigator) *Session {
        s := &Session{src: src, nav: nav, index: -1}
        s.loadSteps()
        return s
}

// Attach keeps the session in sync with store changes and returns the
// unsubscribe func. An active session is re-synced, an idle one reloaded.
func (s *Session) Attach(cs *tours.CollectionStore) func() {
        return cs.Subscribe(func(tours.Change) {
                s.mu.Lock()
                defer s.mu.Unlock()
                if s.index >= 0 {
                        s.reloadSteps()
                        return
                }
                s.loadSteps()
        })
}

// LoadSteps re-reads the active tour's steps and resets to idle.
func (s *Session) LoadSteps() {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.loadSteps()
}

func (s *Session) loadSteps() {
        s.readSteps()
        s.index = -1
}

func (s *Session) readSteps() {
        s.tourID, s.steps = "", nil
        if t, ok := s.src.ActiveTour(); ok {
                s.tourID = t.ID
                s.steps = t.SortedSteps()
        }
}

func (s *Session) Start() {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.start()
}

func (s *Session) start() {
        if len(s.steps) == 0 {
                s.nav.Notify(msgNoSteps, host.SeverityWarning)
                return
        }
        s.index = 0
        s.show()
}

// Next advances one step. On an idle session it starts the tour instead.
func (s *Session) Next() {
        s.mu.Lock()
        defer s.mu.Unlock()
        if s.index < 0 {
                s.start()
                return
        }
        if s.index >= len(s.steps)-1 {
                s.nav.Notify(msgEndOfTour, host.SeverityInfo)
                return
        }
        s.index++
        s.show()
}

// Previous goes back one step. On an idle session it starts the tour instead.
func (s *Session) Previous() {
        s.mu.Lock()
        defer s.mu.Unlock()
        if s.index < 0 {
                s.start()
                return
        }
        if s.index == 0 {
                s.nav.Notify(msgFirstStep, host.SeverityInfo)
                return
        }
        s.index--
        s.show()
}

func (s *Session) Stop() {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.stop()
}

func (s *Session) stop() {
        s.index = -1
        if h, ok := s.nav.(host.Highlighter); ok {
                h.ClearHighlight()
        }
}

// ReloadSteps re-syncs after an external change. An active session keeps its
// position, clamped to the new step count, without revealing anything.
func (s *Session) ReloadSteps() {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.reloadSteps()
}

func (s *Session) reloadSteps() {
        wasActive := s.index >= 0
        prev := s.index
        s.readSteps()
        if !wasActive {
                s.index = -1
                return
        }
        if len(s.steps) == 0 {
                s.stop()
                return
        }
        s.index = min(prev, len(s.steps)-1)
}

func (s *Session) show() {
        st := s.steps[s.index]
        if err := s.nav.RevealLocation(st.File, st.Line); err != nil {
                s.nav.Notify(fmt.Sprintf(msgRevealFail, st.Location(), err), host.SeverityWarning)
        }
        s.nav.Notify(fmt.Sprintf("%d/%d: %s", s.index+1, len(s.steps), st.Label()), host.SeverityInfo)
}

// Show reveals the current step again. It is a no-op while idle.
func (s *Session) Show() {
        s.mu.Lock()
        defer s.mu.Unlock()
        if s.index >= 0 {
                s.show()
        }
}

func (s *Session) State() State {
        s.mu.Lock()
        defer s.mu.Unlock()
        if s.index >= 0 {
                return Active
        }
        return Idle
}

// Index is -1 while idle.
func (s *Session) Index() int {
        s.mu.Lock()
        defer s.mu.Unlock()
        return s.index
}

func (s *Session) Current() (model.Step, bool) {
        s.mu.Lock()
        defer s.mu.Unlock()
        if s.index < 0 {
                return model.Step{}, false
        }
        return s.steps[s.index], true
}

func (s *Session) Steps() []model.Step {
        s.mu.Lock()
        defer s.mu.Unlock()
        return append([]model.Step(nil), s.steps...)
}

func (s *Session) TourID() string {
        s.mu.Lock()
        defer s.mu.Unlock()
        return s.tourID
}

// Resume restores a saved position without revealing it. A saved session for a
// tour that is no longer active resumes idle. The step id wins over the index
// when the step still exists; failing that, a step with the same location and
// description does.
func (s *Session) Resume(st *store.SessionState) State {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.loadSteps()
        if st == nil || st.Index < 0 || st.TourID != s.tourID || len(s.steps) == 0 {
                return Idle
        }
        s.index = min(st.Index, len(s.steps)-1)
        if i := s.find(st); i >= 0 {
                s.index = i
        }
        return Active
}

func (s *Session) find(st *store.SessionState) int {
        for i, step := range s.steps {
                if st.StepID != "" && step.ID == st.StepID {
                        return i
                }
        }
        if st.Step == nil {
                return -1
        }
        want := *st.Step
        want.ID = ""
        for i, step := range s.steps {
                if model.SameStep(step, want) {
                        return i
                }
        }
        return -1
}

// SaveState captures the position for store.Store.SaveSessionState.
func (s *Session) SaveState() *store.SessionState {
        s.mu.Lock()
        defer s.mu.Unlock()
        st := &store.SessionState{Version: 1, Index: -1}
        if s.index < 0 {
                return st
        }
        st.TourID = s.tourID
        cur := s.steps[s.index]
        st.StepID = cur.ID
        st.Step = &cur
        st.Index = s.index
        return st
}
