// Package tours owns the in-memory tour collection of one project. Every
// mutation runs read, apply, persist, notify as one unit under a single writer.
package tours

import (
        "context"
        "errors"
        "fmt"
        "io"
        "log/slog"
        "math"
        "sort"
        "sync"

        "devtour/internal/model"
        "devtour/internal/mutate"
        "devtour/internal/store"
)

// Document is the persisted form of the collection.
type Document interface {
        ReadDocument() ([]byte, error)
        WriteDocument(b []byte) error
}

// EventSink receives a record of every successful mutation. Failures are
// logged and never fail the mutation.
type EventSink interface {
        RecordEvent(ctx context.Context, typ, entityID string, payload any) error
}

// PersistenceError means the mutation was applied in memory but could not be
// written. Memory stays ahead of disk until the next successful write or Reload.
type PersistenceError struct {
        Op  string
        Err error
}

func (e *PersistenceError) Error() string {
        return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Change is delivered to subscribers after every successful mutation and every reload.
type Change struct {
        // Op is the event type, e.g. "step.add" or "reload".
        Op         string
        EntityID   string
        Collection model.Collection
}

type Options struct {
        Logger *slog.Logger
        Events EventSink
}

type CollectionStore struct {
        doc    Document
        log    *slog.Logger
        events EventSink

        // writeMu serializes whole mutations including notification; mu guards state.
        writeMu sync.Mutex
        mu      sync.RWMutex
        state   model.Collection
        byFile  map[string][]model.Step

        subsMu sync.Mutex
        subs   []subscription
        nextID int
}

type subscription struct {
        id int
        fn func(Change)
}

// Open loads the document and returns a store holding it.
func Open(doc Document, opts Options) (*CollectionStore, error) {
        s := &CollectionStore{doc: doc, log: opts.Logger, events: opts.Events}
        if s.log == nil {
                s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
        }
        c, err := s.read()
        s.setState(c)
        return s, err
}

// setState replaces the collection and rebuilds the per-file step index.
// Callers hold mu for writing.
func (s *CollectionStore) setState(c model.Collection) {
        s.state = c
        s.byFile = map[string][]model.Step{}
        for _, t := range c.Tours {
                for _, st := range t.Steps {
                        if st.File == "" {
                                continue
                        }
                        s.byFile[st.File] = append(s.byFile[st.File], st)
                }
        }
        for _, steps := range s.byFile {
                sort.SliceStable(steps, func(i, j int) bool { return lineOrLast(steps[i].Line) < lineOrLast(steps[j].Line) })
        }
}

func lineOrLast(line int) int {
        if line <= 0 {
                return math.MaxInt
        }
        return line
}

func (s *CollectionStore) read() (model.Collection, error) {
        b, err := s.doc.ReadDocument()
        if err != nil {
                if errors.Is(err, store.ErrNoWorkspace) {
                        return store.Parse(nil), err
                }
                // Unreadable content is recovered as an empty collection.
                s.log.Warn("document unreadable; using empty collection", "err", err)
                return store.Parse(nil), nil
        }
        if shape := store.DetectShape(b); shape == store.ShapeMalformed || shape == store.ShapeUnknown {
                s.log.Warn("document not recognized; using empty collection", "shape", string(shape))
        }
        c := store.Parse(b)
        if store.HasUnstableIDs(b) {
                return s.migrate(c), nil
        }
        return c, nil
}

// migrate writes c back in canonical form so the ids Parse had to issue stay
// the same on the next read. A failed write is logged; c is still usable for
// this process.
func (s *CollectionStore) migrate(c model.Collection) model.Collection {
        b, err := store.Serialize(c)
        if err != nil {
                s.log.Warn("document migration failed", "err", err)
                return c
        }
        if err := s.doc.WriteDocument(b); err != nil {
                s.log.Warn("document migration not persisted; ids will change on next read", "err", err)
                return c
        }
        s.log.Info("document rewritten with stable ids")
        return store.Parse(b)
}

// Subscribe registers fn for change notifications, delivered synchronously in
// registration order. fn may read from the store but must not mutate it.
func (s *CollectionStore) Subscribe(fn func(Change)) (unsubscribe func()) {
        s.subsMu.Lock()
        defer s.subsMu.Unlock()
        s.nextID++
        id := s.nextID
        s.subs = append(s.subs, subscription{id: id, fn: fn})
        return func() {
                s.subsMu.Lock()
                defer s.subsMu.Unlock()
                for i, sub := range s.subs {
                        if sub.id == id {
                                s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
                                return
                        }
                }
        }
}

func (s *CollectionStore) notify(ch Change) {
        s.subsMu.Lock()
        subs := append([]subscription(nil), s.subs...)
        s.subsMu.Unlock()
        for _, sub := range subs {
                sub.fn(ch)
        }
}

// Snapshot returns a deep copy of the current collection.
func (s *CollectionStore) Snapshot() model.Collection {
        s.mu.RLock()
        defer s.mu.RUnlock()
        return s.state.Clone()
}

// mutate applies fn to the live state and, when fn reports a change, persists,
// records and notifies. fn returning an error leaves the state untouched.
func (s *CollectionStore) mutate(op string, fn func(c *model.Collection) (entityID string, payload any, changed bool, err error)) error {
        s.writeMu.Lock()
        defer s.writeMu.Unlock()

        s.mu.Lock()
        work := s.state.Clone()
        entityID, payload, changed, err := fn(&work)
        if err != nil || !changed {
                s.mu.Unlock()
                return err
        }
        b, err := store.Serialize(work)
        if err != nil {
                s.mu.Unlock()
                return err
        }
        // The in-memory copy is the canonical re-parse of what we write, so memory
        // and disk agree byte-for-byte after a successful save.
        s.setState(store.Parse(b))
        snapshot := s.state.Clone()
        s.mu.Unlock()

        if werr := s.doc.WriteDocument(b); werr != nil {
                s.log.Error("persist failed", "op", op, "err", werr)
                return &PersistenceError{Op: op, Err: werr}
        }
        s.log.Debug("mutation persisted", "op", op, "entity", entityID)

        if s.events != nil {
                if eerr := s.events.RecordEvent(context.Background(), op, entityID, payload); eerr != nil {
                        s.log.Warn("event log append failed", "op", op, "err", eerr)
                }
        }
        s.notify(Change{Op: op, EntityID: entityID, Collection: snapshot})
        return nil
}

func (s *CollectionStore) CreateTour(name string) (model.Tour, error) {
        var created model.Tour
        err := s.mutate("tour.create", func(c *model.Collection) (string, any, bool, error) {
                t, err := mutate.CreateTour(c, name)
                if err != nil {
                        return "", nil, false, err
                }
                created = t
                return t.ID, t, true, nil
        })
        return created, err
}

// SetActiveTour reports whether the active tour changed. Unknown ids are a no-op.
func (s *CollectionStore) SetActiveTour(tourID string) (bool, error) {
        changed := false
        err := s.mutate("tour.activate", func(c *model.Collection) (string, any, bool, error) {
                changed = mutate.SetActiveTour(c, tourID)
                return tourID, map[string]any{"tourId": tourID}, changed, nil
        })
        return changed, err
}

// AddStep is the non-interactive add: an empty tourID targets the active tour.
func (s *CollectionStore) AddStep(file string, line int, description, tourID string) (model.Step, error) {
        var added model.Step
        err := s.mutate("step.add", func(c *model.Collection) (string, any, bool, error) {
                res, err := mutate.AddStep(c, mutate.AddStepInput{File: file, Line: line, Description: description, TourID: tourID})
                if err != nil {
                        return "", nil, false, err
                }
                added = res.Step
                return res.Step.ID, res.Step, true, nil
        })
        return added, err
}

// DeleteStep reports whether a step was removed. An empty tourID searches all tours.
func (s *CollectionStore) DeleteStep(stepID, tourID string) (bool, error) {
        removed := false
        err := s.mutate("step.delete", func(c *model.Collection) (string, any, bool, error) {
                st, err := mutate.DeleteStep(c, stepID, tourID)
                if err != nil {
                        return "", nil, false, err
                }
                removed = true
                return st.ID, st, true, nil
        })
        return removed, err
}

// DeleteMatchingStep removes target, matched by id while it exists and by
// file, line and description otherwise. Views holding steps from before a
// reload use it.
func (s *CollectionStore) DeleteMatchingStep(target model.Step, tourID string) (model.Step, error) {
        var removed model.Step
        err := s.mutate("step.delete", func(c *model.Collection) (string, any, bool, error) {
                st, err := mutate.DeleteMatchingStep(c, target, tourID)
                if err != nil {
                        return "", nil, false, err
                }
                removed = st
                return st.ID, st, true, nil
        })
        return removed, err
}

// AddStepToNewTour creates the tour and its first step in one write.
func (s *CollectionStore) AddStepToNewTour(name, file string, line int, description string) (model.Tour, model.Step, error) {
        var (
                tour  model.Tour
                added model.Step
        )
        err := s.mutate("step.add", func(c *model.Collection) (string, any, bool, error) {
                t, st, err := mutate.AddStepToNewTour(c, name, mutate.AddStepInput{File: file, Line: line, Description: description})
                if err != nil {
                        return "", nil, false, err
                }
                tour, added = t, st
                return st.ID, map[string]any{"step": st, "tour": t.Name}, true, nil
        })
        return tour, added, err
}

// ImportTour creates a tour with the given steps, in order, in one write.
func (s *CollectionStore) ImportTour(name string, steps []mutate.AddStepInput) (model.Tour, error) {
        var imported model.Tour
        err := s.mutate("tour.import", func(c *model.Collection) (string, any, bool, error) {
                t, err := mutate.ImportTour(c, name, steps)
                if err != nil {
                        return "", nil, false, err
                }
                imported = t
                return t.ID, map[string]any{"name": t.Name, "steps": len(t.Steps)}, true, nil
        })
        return imported, err
}

func (s *CollectionStore) RenameTour(tourID, name string) (model.Tour, error) {
        var renamed model.Tour
        err := s.mutate("tour.rename", func(c *model.Collection) (string, any, bool, error) {
                t, err := mutate.RenameTour(c, tourID, name)
                if err != nil {
                        return "", nil, false, err
                }
                renamed = *t
                return t.ID, map[string]any{"name": t.Name}, true, nil
        })
        return renamed, err
}

func (s *CollectionStore) DeleteTour(tourID string) (model.Tour, error) {
        var removed model.Tour
        err := s.mutate("tour.delete", func(c *model.Collection) (string, any, bool, error) {
                t, err := mutate.DeleteTour(c, tourID)
                if err != nil {
                        return "", nil, false, err
                }
                removed = t
                return t.ID, map[string]any{"name": t.Name, "steps": len(t.Steps)}, true, nil
        })
        return removed, err
}

func (s *CollectionStore) UpdateStepDescription(stepID, description string) (model.Step, error) {
        var updated model.Step
        err := s.mutate("step.describe", func(c *model.Collection) (string, any, bool, error) {
                st, err := mutate.UpdateStepDescription(c, stepID, description)
                if err != nil {
                        return "", nil, false, err
                }
                updated = st
                return st.ID, map[string]any{"description": description}, true, nil
        })
        return updated, err
}

func (s *CollectionStore) MoveStep(stepID string, position int) (model.Step, error) {
        var moved model.Step
        err := s.mutate("step.move", func(c *model.Collection) (string, any, bool, error) {
                st, err := mutate.MoveStep(c, stepID, position)
                if err != nil {
                        return "", nil, false, err
                }
                moved = st
                return st.ID, map[string]any{"order": st.Order}, true, nil
        })
        return moved, err
}

// Reload replaces the in-memory state with the persisted document and always
// notifies, even when nothing changed. Unpersisted in-memory changes are lost.
func (s *CollectionStore) Reload() error {
        s.writeMu.Lock()
        defer s.writeMu.Unlock()

        c, err := s.read()
        s.mu.Lock()
        s.setState(c)
        snapshot := s.state.Clone()
        s.mu.Unlock()

        s.notify(Change{Op: "reload", Collection: snapshot})
        return err
}

// ActiveTour returns the active tour. A stale or missing ActiveTourID is
// repaired in memory to the first tour as a side effect; the repair is
// persisted with the next write. Use PeekActiveTour for a pure read.
func (s *CollectionStore) ActiveTour() (model.Tour, bool) {
        s.mu.Lock()
        defer s.mu.Unlock()
        if mutate.RepairActiveTour(&s.state) {
                s.log.Debug("repaired active tour", "activeTourId", s.state.ActiveTourID)
        }
        t, ok := s.state.FindTour(s.state.ActiveTourID)
        if !ok {
                return model.Tour{}, false
        }
        return cloneTour(*t), true
}

// PeekActiveTour resolves the active tour like ActiveTour without repairing state.
func (s *CollectionStore) PeekActiveTour() (model.Tour, bool) {
        s.mu.RLock()
        defer s.mu.RUnlock()
        t, ok := mutate.ActiveTour(&s.state)
        if !ok {
                return model.Tour{}, false
        }
        return cloneTour(*t), true
}

// RepairActiveTour applies the ActiveTour repair explicitly and reports whether it changed state.
func (s *CollectionStore) RepairActiveTour() bool {
        s.mu.Lock()
        defer s.mu.Unlock()
        return mutate.RepairActiveTour(&s.state)
}

func (s *CollectionStore) Tour(id string) (model.Tour, bool) {
        s.mu.RLock()
        defer s.mu.RUnlock()
        t, ok := s.state.FindTour(id)
        if !ok {
                return model.Tour{}, false
        }
        return cloneTour(*t), true
}

func (s *CollectionStore) Step(id string) (model.Step, model.Tour, bool) {
        s.mu.RLock()
        defer s.mu.RUnlock()
        st, t, ok := s.state.FindStep(id)
        if !ok {
                return model.Step{}, model.Tour{}, false
        }
        return *st, cloneTour(*t), true
}

// StepsForFile returns every step, across all tours, that points at the
// project-relative file, sorted by line (steps without a line last).
func (s *CollectionStore) StepsForFile(file string) []model.Step {
        file = store.NormalizeFilePath(file)
        s.mu.RLock()
        defer s.mu.RUnlock()
        return append([]model.Step{}, s.byFile[file]...)
}

// StepsAt returns the steps anchored at file:line.
func (s *CollectionStore) StepsAt(file string, line int) []model.Step {
        out := []model.Step{}
        for _, st := range s.StepsForFile(file) {
                if st.Line == line {
                        out = append(out, st)
                }
        }
        return out
}

// Serialize returns the canonical bytes of the current in-memory state.
func (s *CollectionStore) Serialize() ([]byte, error) {
        s.mu.RLock()
        defer s.mu.RUnlock()
        return store.Serialize(s.state)
}

func cloneTour(t model.Tour) model.Tour {
        t.Steps = append([]model.Step{}, t.Steps...)
        return t
}
