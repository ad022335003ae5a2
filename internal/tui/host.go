package tui

import (
        "fmt"
        "os"
        "os/exec"
        "path/filepath"
        "strconv"
        "strings"

        "devtour/internal/host"

        tea "github.com/charmbracelet/bubbletea"
)

type revealDoneMsg struct {
        err error
}

// tuiHost is the session's view of the TUI. The last revealed location is
// shown as the highlight until ClearHighlight; with a reveal command set, the
// reveal is also queued as an external process for the model to run.
type tuiHost struct {
        root          string
        revealCommand string

        message  string
        severity host.Severity

        revealedFile string
        revealedLine int
        highlighted  bool

        pending *exec.Cmd
}

func (h *tuiHost) RevealLocation(file string, line int) error {
        h.revealedFile, h.revealedLine = file, line
        h.highlighted = true
        h.pending = nil
        if file == "" {
                return fmt.Errorf("step has no file")
        }
        abs := filepath.Join(h.root, filepath.FromSlash(file))
        if _, err := os.Stat(abs); err != nil {
                return fmt.Errorf("file not found")
        }
        if tmpl := strings.TrimSpace(h.revealCommand); tmpl != "" {
                name, args := host.RevealArgs(tmpl, file, abs, line)
                h.pending = exec.Command(name, args...)
        }
        return nil
}

func (h *tuiHost) Notify(message string, severity host.Severity) {
        h.message, h.severity = message, severity
}

func (h *tuiHost) ClearHighlight() {
        h.highlighted = false
        h.pending = nil
}

// takeReveal hands the queued reveal to bubbletea, which suspends the TUI
// while the command runs.
func (h *tuiHost) takeReveal() tea.Cmd {
        c := h.pending
        h.pending = nil
        if c == nil {
                return nil
        }
        return tea.ExecProcess(c, func(err error) tea.Msg {
                return revealDoneMsg{err: err}
        })
}

// highlight is the highlighted location, or "" when nothing is highlighted.
func (h *tuiHost) highlight() string {
        if !h.highlighted || h.revealedFile == "" {
                return ""
        }
        if h.revealedLine > 0 {
                return h.revealedFile + ":" + strconv.Itoa(h.revealedLine)
        }
        return h.revealedFile
}

func (h *tuiHost) isHighlighted(file string, line int) bool {
        return h.highlighted && h.revealedFile == file && h.revealedLine == line
}

func (h *tuiHost) status() string {
        if h.message == "" {
                return ""
        }
        switch h.severity {
        case host.SeverityError:
                return statusErrorStyle.Render(h.message)
        case host.SeverityWarning:
                return statusWarnStyle.Render(h.message)
        default:
                return statusInfoStyle.Render(h.message)
        }
}
