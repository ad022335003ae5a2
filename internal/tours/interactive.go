package tours

import (
        "errors"

        "devtour/internal/host"
        "devtour/internal/model"
)

const newTourOption = "New tour…"

// AddStepInteractive prompts for a description and a target tour (or a new one)
// and then adds the step. A cancelled prompt returns added == false and no error,
// with nothing modified. A blank new tour name is mutate.ErrEmptyName. With no
// tours yet, the step goes to a synthesized "Main Tour".
func (s *CollectionStore) AddStepInteractive(file string, line int, p host.Prompter) (step model.Step, added bool, err error) {
        desc, err := p.PromptText("Step description:")
        if err != nil {
                return model.Step{}, false, ignoreCancel(err)
        }

        snap := s.Snapshot()
        if len(snap.Tours) == 0 {
                st, err := s.AddStep(file, line, desc, "")
                return st, err == nil, err
        }

        options := make([]string, 0, len(snap.Tours)+1)
        for _, t := range snap.Tours {
                label := t.Name
                if t.ID == snap.ActiveTourID {
                        label += " (active)"
                }
                options = append(options, label)
        }
        options = append(options, newTourOption)

        idx, err := p.PromptChoice("Add to which tour?", options)
        if err != nil {
                return model.Step{}, false, ignoreCancel(err)
        }

        if idx >= 0 && idx < len(snap.Tours) {
                st, err := s.AddStep(file, line, desc, snap.Tours[idx].ID)
                if err != nil {
                        return model.Step{}, false, err
                }
                return st, true, nil
        }

        name, err := p.PromptText("New tour name:")
        if err != nil {
                return model.Step{}, false, ignoreCancel(err)
        }
        _, st, err := s.AddStepToNewTour(name, file, line, desc)
        if err != nil {
                return model.Step{}, false, err
        }
        return st, true, nil
}

func ignoreCancel(err error) error {
        if errors.Is(err, host.ErrCancelled) {
                return nil
        }
        return err
}
