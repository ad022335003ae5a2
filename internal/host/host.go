// Package host defines what the tour core needs from its surroundings (an editor,
// a terminal, a TUI) and a terminal implementation of it.
package host

import "errors"

// ErrCancelled is returned by prompts the user dismissed. Callers treat it as
// "do nothing" rather than a failure.
var ErrCancelled = errors.New("cancelled")

type Severity int

const (
        SeverityInfo Severity = iota
        SeverityWarning
        SeverityError
)

func (s Severity) String() string {
        switch s {
        case SeverityWarning:
                return "warning"
        case SeverityError:
                return "error"
        default:
                return "info"
        }
}

// Revealer shows a project-relative file location. Failures are reported to the
// user, never fatal.
type Revealer interface {
        RevealLocation(file string, line int) error
}

type Notifier interface {
        Notify(message string, severity Severity)
}

// Highlighter is optionally implemented by hosts that decorate the current step.
type Highlighter interface {
        ClearHighlight()
}

type Prompter interface {
        PromptText(prompt string) (string, error)
        // PromptChoice returns the index of the chosen option.
        PromptChoice(prompt string, options []string) (int, error)
        Confirm(message string) (bool, error)
}

// Navigator is what a walkthrough session drives.
type Navigator interface {
        Revealer
        Notifier
}
