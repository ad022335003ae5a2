package mutate

import (
        "strings"

        "devtour/internal/model"
        "devtour/internal/store"
)

func takenIDs(c *model.Collection) map[string]bool {
        taken := map[string]bool{}
        for _, t := range c.Tours {
                taken[t.ID] = true
                for _, s := range t.Steps {
                        taken[s.ID] = true
                }
        }
        return taken
}

// CreateTour appends an empty tour named name (trimmed) and makes it active.
func CreateTour(c *model.Collection, name string) (model.Tour, error) {
        name = strings.TrimSpace(name)
        if name == "" {
                return model.Tour{}, ErrEmptyName
        }
        t := model.Tour{ID: store.NewTourID(takenIDs(c)), Name: name, Steps: []model.Step{}}
        c.Tours = append(c.Tours, t)
        c.ActiveTourID = t.ID
        return t, nil
}

// ensureTour synthesizes the legacy "Main Tour" when the collection is empty.
func ensureTour(c *model.Collection) (model.Tour, bool) {
        if len(c.Tours) > 0 {
                return model.Tour{}, false
        }
        t := model.Tour{ID: store.NewTourID(takenIDs(c)), Name: model.LegacyTourName, Steps: []model.Step{}}
        c.Tours = append(c.Tours, t)
        c.ActiveTourID = t.ID
        return t, true
}

// SetActiveTour reports whether the active tour changed. Unknown ids and the
// already-active tour are no-ops.
func SetActiveTour(c *model.Collection, tourID string) bool {
        tourID = strings.TrimSpace(tourID)
        if c.ActiveTourID == tourID {
                return false
        }
        if _, ok := c.FindTour(tourID); !ok {
                return false
        }
        c.ActiveTourID = tourID
        return true
}

// ActiveTour resolves the active tour without modifying c: the referenced tour,
// else the first tour.
func ActiveTour(c *model.Collection) (*model.Tour, bool) {
        if t, ok := c.FindTour(c.ActiveTourID); ok {
                return t, true
        }
        if len(c.Tours) == 0 {
                return nil, false
        }
        return &c.Tours[0], true
}

// RepairActiveTour points a stale or missing ActiveTourID at the first tour
// (or clears it when there are no tours). It reports whether c changed.
func RepairActiveTour(c *model.Collection) bool {
        if _, ok := c.FindTour(c.ActiveTourID); ok {
                return false
        }
        next := ""
        if len(c.Tours) > 0 {
                next = c.Tours[0].ID
        }
        if next == c.ActiveTourID {
                return false
        }
        c.ActiveTourID = next
        return true
}

func RenameTour(c *model.Collection, tourID, name string) (*model.Tour, error) {
        name = strings.TrimSpace(name)
        if name == "" {
                return nil, ErrEmptyName
        }
        t, ok := c.FindTour(tourID)
        if !ok {
                return nil, tourNotFound(tourID)
        }
        t.Name = name
        return t, nil
}

// DeleteTour removes a tour and its steps. If it was active, the first remaining
// tour becomes active.
func DeleteTour(c *model.Collection, tourID string) (model.Tour, error) {
        tourID = strings.TrimSpace(tourID)
        for i := range c.Tours {
                if c.Tours[i].ID != tourID {
                        continue
                }
                removed := c.Tours[i]
                c.Tours = append(c.Tours[:i:i], c.Tours[i+1:]...)
                RepairActiveTour(c)
                return removed, nil
        }
        return model.Tour{}, tourNotFound(tourID)
}

// ImportTour creates a tour named name holding steps in the given order.
func ImportTour(c *model.Collection, name string, steps []AddStepInput) (model.Tour, error) {
        t, err := CreateTour(c, name)
        if err != nil {
                return model.Tour{}, err
        }
        for _, in := range steps {
                in.TourID = t.ID
                if _, err := AddStep(c, in); err != nil {
                        return model.Tour{}, err
                }
        }
        created, _ := c.FindTour(t.ID)
        return *created, nil
}
