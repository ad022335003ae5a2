package mutate

import (
        "errors"
        "fmt"
)

var (
        ErrEmptyName    = errors.New("name is empty")
        ErrTourNotFound = errors.New("tour not found")
        ErrStepNotFound = errors.New("step not found")
)

type NotFoundError struct {
        Kind string
        ID   string
}

func (e NotFoundError) Error() string {
        return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is lets callers match on ErrTourNotFound / ErrStepNotFound.
func (e NotFoundError) Is(target error) bool {
        switch target {
        case ErrTourNotFound:
                return e.Kind == "tour"
        case ErrStepNotFound:
                return e.Kind == "step"
        }
        return false
}

func tourNotFound(id string) error { return NotFoundError{Kind: "tour", ID: id} }
func stepNotFound(id string) error { return NotFoundError{Kind: "step", ID: id} }
