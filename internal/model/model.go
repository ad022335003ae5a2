package model

import (
        "fmt"
        "path"
        "sort"
        "strings"
        "time"
)

// Step is a single annotated source location inside a tour.
//
// Line == 0 means "no line". Order is 1-based and dense within the owning tour
// after every mutation. TourID mirrors the containing tour and is rewritten on
// every save; tour containment is authoritative.
type Step struct {
        ID          string `json:"id"`
        File        string `json:"file,omitempty"`
        Line        int    `json:"line,omitempty"`
        Description string `json:"description"`
        Order       int    `json:"order"`
        TourID      string `json:"tourId"`
}

type Tour struct {
        ID    string `json:"id"`
        Name  string `json:"name"`
        Steps []Step `json:"steps"`
}

// Collection is the whole persisted document.
type Collection struct {
        Tours        []Tour `json:"tours"`
        ActiveTourID string `json:"activeTourId,omitempty"`
}

func DefaultTourName(position int) string {
        return fmt.Sprintf("Tour %d", position)
}

const LegacyTourName = "Main Tour"

func (c *Collection) FindTour(id string) (*Tour, bool) {
        id = strings.TrimSpace(id)
        if c == nil || id == "" {
                return nil, false
        }
        for i := range c.Tours {
                if c.Tours[i].ID == id {
                        return &c.Tours[i], true
                }
        }
        return nil, false
}

// FindStep returns the step and the tour that owns it.
func (c *Collection) FindStep(stepID string) (*Step, *Tour, bool) {
        stepID = strings.TrimSpace(stepID)
        if c == nil || stepID == "" {
                return nil, nil, false
        }
        for i := range c.Tours {
                t := &c.Tours[i]
                for j := range t.Steps {
                        if t.Steps[j].ID == stepID {
                                return &t.Steps[j], t, true
                        }
                }
        }
        return nil, nil, false
}

// HasID reports whether any tour or step already uses id.
func (c *Collection) HasID(id string) bool {
        if c == nil {
                return false
        }
        for _, t := range c.Tours {
                if t.ID == id {
                        return true
                }
                for _, s := range t.Steps {
                        if s.ID == id {
                                return true
                        }
                }
        }
        return false
}

// Clone returns a deep copy so snapshots handed to observers can't alias store state.
func (c Collection) Clone() Collection {
        out := Collection{ActiveTourID: c.ActiveTourID, Tours: make([]Tour, len(c.Tours))}
        for i, t := range c.Tours {
                nt := t
                nt.Steps = append([]Step(nil), t.Steps...)
                if nt.Steps == nil {
                        nt.Steps = []Step{}
                }
                out.Tours[i] = nt
        }
        return out
}

// SortedSteps returns a copy of the tour's steps in canonical walk order.
func (t Tour) SortedSteps() []Step {
        out := append([]Step(nil), t.Steps...)
        SortSteps(out)
        return out
}

func (t Tour) MaxOrder() int {
        max := 0
        for _, s := range t.Steps {
                if s.Order > max {
                        max = s.Order
                }
        }
        return max
}

// SortSteps orders by (order, file, line) where a missing line sorts last.
// It never renumbers.
func SortSteps(steps []Step) {
        sort.SliceStable(steps, func(i, j int) bool {
                a, b := steps[i], steps[j]
                if a.Order != b.Order {
                        return a.Order < b.Order
                }
                if a.File != b.File {
                        return a.File < b.File
                }
                return lineKey(a.Line) < lineKey(b.Line)
        })
}

func lineKey(line int) int {
        if line <= 0 {
                return int(^uint(0) >> 1)
        }
        return line
}

// Label is the short text used in notifications and list rows.
func (s Step) Label() string {
        if d := strings.TrimSpace(s.Description); d != "" {
                return d
        }
        if f := strings.TrimSpace(s.File); f != "" {
                if s.Line <= 0 {
                        return path.Base(f)
                }
                return fmt.Sprintf("%s:%d", path.Base(f), s.Line)
        }
        if s.Line > 0 {
                return fmt.Sprintf("Line %d", s.Line)
        }
        return "Untitled step"
}

// Location formats file:line for display ("" when the step has no file).
func (s Step) Location() string {
        if strings.TrimSpace(s.File) == "" {
                return ""
        }
        if s.Line > 0 {
                return fmt.Sprintf("%s:%d", s.File, s.Line)
        }
        return s.File
}

// SameStep reports whether a and b denote the same step. Ids decide when both
// carry one; otherwise steps from different tours never match, and the rest
// compare by file, line and description.
func SameStep(a, b Step) bool {
        if a.ID != "" && b.ID != "" {
                return a.ID == b.ID
        }
        if a.TourID != "" && b.TourID != "" && a.TourID != b.TourID {
                return false
        }
        return a.File == b.File && a.Line == b.Line && a.Description == b.Description
}

// Event is one entry of the local activity log.
type Event struct {
        ID       string    `json:"id"`
        TS       time.Time `json:"ts"`
        Actor    string    `json:"actor,omitempty"`
        Type     string    `json:"type"`
        EntityID string    `json:"entityId"`
        Payload  any       `json:"payload"`
}
