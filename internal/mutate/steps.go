package mutate

import (
        "strings"

        "devtour/internal/model"
        "devtour/internal/store"
)

type AddStepInput struct {
        File        string
        Line        int
        Description string
        // TourID is optional; empty means the active tour.
        TourID string
}

type AddStepResult struct {
        Step model.Step
        // CreatedTour is set when the collection was empty and "Main Tour" was synthesized.
        CreatedTour *model.Tour
}

// AddStep appends a step with order max(existing)+1 to the target tour and makes
// that tour active. On ErrTourNotFound nothing is modified.
func AddStep(c *model.Collection, in AddStepInput) (AddStepResult, error) {
        target := strings.TrimSpace(in.TourID)
        if target != "" {
                if _, ok := c.FindTour(target); !ok {
                        return AddStepResult{}, tourNotFound(target)
                }
        }

        var res AddStepResult
        if created, ok := ensureTour(c); ok {
                res.CreatedTour = &created
        }

        var t *model.Tour
        if target != "" {
                t, _ = c.FindTour(target)
        } else {
                var ok bool
                t, ok = ActiveTour(c)
                if !ok {
                        return AddStepResult{}, tourNotFound(c.ActiveTourID)
                }
        }

        line := in.Line
        if line < 0 {
                line = 0
        }
        s := model.Step{
                ID:          store.NewStepID(takenIDs(c)),
                File:        store.NormalizeFilePath(in.File),
                Line:        line,
                Description: in.Description,
                Order:       t.MaxOrder() + 1,
                TourID:      t.ID,
        }
        t.Steps = append(t.Steps, s)
        c.ActiveTourID = t.ID
        res.Step = s
        return res, nil
}

// AddStepToNewTour creates a tour named name and adds the step to it as one
// change, so a failure leaves neither behind.
func AddStepToNewTour(c *model.Collection, name string, in AddStepInput) (model.Tour, model.Step, error) {
        t, err := CreateTour(c, name)
        if err != nil {
                return model.Tour{}, model.Step{}, err
        }
        in.TourID = t.ID
        res, err := AddStep(c, in)
        if err != nil {
                return model.Tour{}, model.Step{}, err
        }
        created, _ := c.FindTour(t.ID)
        return *created, res.Step, nil
}

func resolveStepTour(c *model.Collection, stepID, tourID string) (*model.Tour, error) {
        tourID = strings.TrimSpace(tourID)
        if tourID == "" {
                _, t, ok := c.FindStep(stepID)
                if !ok {
                        return nil, stepNotFound(stepID)
                }
                return t, nil
        }
        t, ok := c.FindTour(tourID)
        if !ok {
                return nil, tourNotFound(tourID)
        }
        return t, nil
}

// DeleteStep removes a step and renumbers the remaining steps 1..N in their
// prior order. An empty tourID searches every tour.
func DeleteStep(c *model.Collection, stepID, tourID string) (model.Step, error) {
        stepID = strings.TrimSpace(stepID)
        t, err := resolveStepTour(c, stepID, tourID)
        if err != nil {
                return model.Step{}, err
        }
        for i := range t.Steps {
                if t.Steps[i].ID != stepID {
                        continue
                }
                removed := t.Steps[i]
                t.Steps = append(t.Steps[:i:i], t.Steps[i+1:]...)
                Renumber(t)
                return removed, nil
        }
        return model.Step{}, stepNotFound(stepID)
}

// DeleteMatchingStep removes the step that model.SameStep matches against
// target. It backs deletes issued from a view that may be older than the
// document, where target's ids may no longer exist. An empty tourID uses
// target.TourID; an unknown one searches every tour.
func DeleteMatchingStep(c *model.Collection, target model.Step, tourID string) (model.Step, error) {
        if strings.TrimSpace(tourID) == "" {
                tourID = target.TourID
        }
        if target.ID != "" {
                if _, _, ok := c.FindStep(target.ID); ok {
                        return DeleteStep(c, target.ID, "")
                }
        }
        want := target
        want.ID = ""
        if _, ok := c.FindTour(tourID); !ok {
                // The tour id is as stale as the step id.
                tourID, want.TourID = "", ""
        }
        for ti := range c.Tours {
                t := &c.Tours[ti]
                if tourID != "" && t.ID != tourID {
                        continue
                }
                for i := range t.Steps {
                        if !model.SameStep(t.Steps[i], want) {
                                continue
                        }
                        removed := t.Steps[i]
                        t.Steps = append(t.Steps[:i:i], t.Steps[i+1:]...)
                        Renumber(t)
                        return removed, nil
                }
        }
        if target.ID == "" {
                return model.Step{}, stepNotFound(target.Location())
        }
        return model.Step{}, stepNotFound(target.ID)
}

// Renumber sorts a tour's steps canonically and rewrites order as 1..N.
func Renumber(t *model.Tour) {
        model.SortSteps(t.Steps)
        for i := range t.Steps {
                t.Steps[i].Order = i + 1
                t.Steps[i].TourID = t.ID
        }
}

func UpdateStepDescription(c *model.Collection, stepID, description string) (model.Step, error) {
        s, _, ok := c.FindStep(stepID)
        if !ok {
                return model.Step{}, stepNotFound(stepID)
        }
        s.Description = description
        return *s, nil
}

// MoveStep moves a step to the 1-based position within its tour (clamped to
// 1..N) and renumbers densely.
func MoveStep(c *model.Collection, stepID string, position int) (model.Step, error) {
        stepID = strings.TrimSpace(stepID)
        _, t, ok := c.FindStep(stepID)
        if !ok {
                return model.Step{}, stepNotFound(stepID)
        }
        Renumber(t)

        from := -1
        for i := range t.Steps {
                if t.Steps[i].ID == stepID {
                        from = i
                        break
                }
        }
        to := position - 1
        if to < 0 {
                to = 0
        }
        if to > len(t.Steps)-1 {
                to = len(t.Steps) - 1
        }
        moving := t.Steps[from]
        rest := append(t.Steps[:from:from], t.Steps[from+1:]...)
        out := make([]model.Step, 0, len(t.Steps))
        out = append(out, rest[:to]...)
        out = append(out, moving)
        out = append(out, rest[to:]...)
        for i := range out {
                out[i].Order = i + 1
        }
        t.Steps = out
        return t.Steps[to], nil
}
