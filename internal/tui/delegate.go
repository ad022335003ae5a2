package tui

import (
        "fmt"
        "io"
        "strings"

        "devtour/internal/model"

        "github.com/charmbracelet/bubbles/list"
        tea "github.com/charmbracelet/bubbletea"
        "github.com/charmbracelet/lipgloss"
        xansi "github.com/charmbracelet/x/ansi"
)

type tourItem struct {
        tour   model.Tour
        active bool
}

func (i tourItem) Title() string {
        mark := "  "
        if i.active {
                mark = "● "
        }
        return fmt.Sprintf("%s%s (%d)", mark, i.tour.Name, len(i.tour.Steps))
}

func (i tourItem) FilterValue() string { return i.tour.Name }

type stepItem struct {
        step    model.Step
        pos     int
        current bool
}

func (i stepItem) Title() string {
        mark := "  "
        if i.current {
                mark = "▶ "
        }
        return fmt.Sprintf("%s%2d. %s", mark, i.pos, i.step.Label())
}

func (i stepItem) FilterValue() string { return i.step.Label() }

// rowDelegate renders one line per item, cut to the list width.
type rowDelegate struct {
        normal   lipgloss.Style
        selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
        return rowDelegate{
                normal: lipgloss.NewStyle(),
                selected: lipgloss.NewStyle().
                        Foreground(lipgloss.Color("255")).
                        Background(lipgloss.Color("24")).
                        Bold(true),
        }
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
        contentW := m.Width()
        if contentW < 4 {
                return
        }
        style := d.normal
        if index == m.Index() {
                style = d.selected
        }

        txt := ""
        if t, ok := item.(interface{ Title() string }); ok {
                txt = t.Title()
        } else {
                txt = fmt.Sprint(item)
        }
        fmt.Fprint(w, style.Render(fitWidth(txt, contentW)))
}

// fitWidth pads or truncates s to exactly w terminal cells.
func fitWidth(s string, w int) string {
        sw := xansi.StringWidth(s)
        if sw < w {
                return s + strings.Repeat(" ", w-sw)
        }
        if sw > w {
                return xansi.Truncate(s, w, "…")
        }
        return s
}
