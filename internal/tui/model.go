package tui

import (
        "fmt"
        "io"
        "log/slog"
        "strings"

        "devtour/internal/host"
        "devtour/internal/model"
        "devtour/internal/session"
        "devtour/internal/store"
        "devtour/internal/tours"

        "github.com/charmbracelet/bubbles/help"
        "github.com/charmbracelet/bubbles/key"
        "github.com/charmbracelet/bubbles/list"
        "github.com/charmbracelet/bubbles/textinput"
        "github.com/charmbracelet/bubbles/viewport"
        tea "github.com/charmbracelet/bubbletea"
        "github.com/charmbracelet/lipgloss"
)

type collectionChangedMsg struct{ op string }

type focusPane int

const (
        focusTours focusPane = iota
        focusSteps
)

type inputMode int

const (
        modeBrowse inputMode = iota
        modeNewTour
        modeRenameTour
        modeEditStep
        modeConfirmDelete
)

type appModel struct {
        store   *tours.CollectionStore
        project store.Store
        sess    *session.Session
        host    *tuiHost
        log     *slog.Logger

        keys   keyMap
        help   help.Model
        tours  list.Model
        steps  list.Model
        detail viewport.Model
        input  textinput.Model

        focus   focusPane
        mode    inputMode
        target  string // id the pending input or confirmation applies to
        mdStyle string
        context int

        width  int
        height int
}

func newModel(opts Options) appModel {
        cfg := opts.Config
        if cfg == nil {
                cfg = &store.GlobalConfig{}
        }
        h := &tuiHost{root: opts.Project.Root, revealCommand: cfg.Reveal}
        log := opts.Logger
        if log == nil {
                log = slog.New(slog.NewTextHandler(io.Discard, nil))
        }

        newList := func(title string) list.Model {
                l := list.New(nil, newRowDelegate(), 30, 10)
                l.Title = title
                l.Styles.Title = titleStyle
                l.SetShowHelp(false)
                l.SetShowStatusBar(false)
                l.SetFilteringEnabled(false)
                l.SetShowPagination(true)
                l.DisableQuitKeybindings()
                return l
        }

        in := textinput.New()
        in.CharLimit = 200

        m := appModel{
                store:   opts.Store,
                project: opts.Project,
                sess:    session.New(opts.Store, h),
                host:    h,
                log:     log,
                keys:    defaultKeyMap(),
                help:    help.New(),
                tours:   newList("Tours"),
                steps:   newList("Steps"),
                detail:  viewport.New(40, 10),
                input:   in,
                focus:   focusSteps,
                mdStyle: markdownStyleName(cfg.TUIStyle()),
                context: cfg.Context(),
        }
        m.sess.Attach(opts.Store)
        m.refresh()
        return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
        switch msg := msg.(type) {
        case tea.WindowSizeMsg:
                m.width, m.height = msg.Width, msg.Height
                m.layout()
                m.updateDetail()
                return m, nil

        case collectionChangedMsg:
                m.log.Debug("collection changed", "op", msg.op)
                m.refresh()
                return m, nil

        case revealDoneMsg:
                if msg.err != nil {
                        m.host.Notify("reveal failed: "+msg.err.Error(), host.SeverityError)
                }
                return m, nil

        case tea.KeyMsg:
                if m.mode != modeBrowse {
                        return m.updateInput(msg)
                }
                return m.updateBrowse(msg)
        }
        return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
        k := m.keys
        switch {
        case key.Matches(msg, k.Quit):
                return m, tea.Quit
        case key.Matches(msg, k.Help):
                m.help.ShowAll = !m.help.ShowAll
                m.layout()
        case key.Matches(msg, k.Focus):
                if m.focus == focusTours {
                        m.focus = focusSteps
                } else {
                        m.focus = focusTours
                }
        case key.Matches(msg, k.Start):
                m.sess.Start()
                m.followSession()
                return m, m.host.takeReveal()
        case key.Matches(msg, k.Next):
                m.sess.Next()
                m.followSession()
                return m, m.host.takeReveal()
        case key.Matches(msg, k.Prev):
                m.sess.Previous()
                m.followSession()
                return m, m.host.takeReveal()
        case key.Matches(msg, k.Stop):
                m.sess.Stop()
                m.refresh()
        case key.Matches(msg, k.Reload):
                if err := m.store.Reload(); err != nil {
                        m.host.Notify(err.Error(), host.SeverityError)
                } else {
                        m.host.Notify("reloaded", host.SeverityInfo)
                }
                m.refresh()
        case key.Matches(msg, k.Activate) && m.focus == focusTours:
                if t, ok := m.selectedTour(); ok {
                        m.apply(func() error {
                                _, err := m.store.SetActiveTour(t.ID)
                                return err
                        })
                        m.focus = focusSteps
                }
        case key.Matches(msg, k.NewTour):
                return m.beginInput(modeNewTour, "", "New tour name: ", "")
        case key.Matches(msg, k.Edit):
                if m.focus == focusTours {
                        if t, ok := m.selectedTour(); ok {
                                return m.beginInput(modeRenameTour, t.ID, "Rename tour: ", t.Name)
                        }
                } else if st, ok := m.selectedStep(); ok {
                        return m.beginInput(modeEditStep, st.ID, "Description: ", st.Description)
                }
        case key.Matches(msg, k.Delete):
                if m.focus == focusTours {
                        if t, ok := m.selectedTour(); ok {
                                m.mode, m.target = modeConfirmDelete, "tour:"+t.ID
                                m.host.Notify(fmt.Sprintf("Delete tour %q and its %d steps? (y/N)", t.Name, len(t.Steps)), host.SeverityWarning)
                        }
                } else if st, ok := m.selectedStep(); ok {
                        m.mode, m.target = modeConfirmDelete, "step:"+st.ID
                        m.host.Notify(fmt.Sprintf("Delete step %q? (y/N)", st.Label()), host.SeverityWarning)
                }
        case key.Matches(msg, k.MoveUp), key.Matches(msg, k.MoveDown):
                if m.focus != focusSteps {
                        break
                }
                if st, ok := m.selectedStep(); ok {
                        pos := st.Order - 1
                        if key.Matches(msg, k.MoveDown) {
                                pos = st.Order + 1
                        }
                        m.apply(func() error {
                                moved, err := m.store.MoveStep(st.ID, pos)
                                if err == nil {
                                        m.steps.Select(moved.Order - 1)
                                }
                                return err
                        })
                }
        default:
                var cmd tea.Cmd
                if m.focus == focusTours {
                        m.tours, cmd = m.tours.Update(msg)
                } else {
                        m.steps, cmd = m.steps.Update(msg)
                        m.updateDetail()
                }
                return m, cmd
        }
        return m, nil
}

func (m appModel) beginInput(mode inputMode, target, prompt, value string) (tea.Model, tea.Cmd) {
        m.mode, m.target = mode, target
        m.input.Prompt = prompt
        m.input.SetValue(value)
        m.input.CursorEnd()
        return m, m.input.Focus()
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
        if m.mode == modeConfirmDelete {
                target := m.target
                m.mode, m.target = modeBrowse, ""
                if strings.ToLower(msg.String()) != "y" {
                        m.host.Notify("cancelled", host.SeverityInfo)
                        return m, nil
                }
                kind, id, _ := strings.Cut(target, ":")
                m.apply(func() error {
                        if kind == "tour" {
                                _, err := m.store.DeleteTour(id)
                                return err
                        }
                        _, err := m.store.DeleteStep(id, "")
                        return err
                })
                return m, nil
        }

        switch msg.Type {
        case tea.KeyEsc:
                m.mode, m.target = modeBrowse, ""
                m.input.Blur()
                return m, nil
        case tea.KeyEnter:
                value, mode, target := m.input.Value(), m.mode, m.target
                m.mode, m.target = modeBrowse, ""
                m.input.Blur()
                m.apply(func() error {
                        switch mode {
                        case modeNewTour:
                                _, err := m.store.CreateTour(value)
                                return err
                        case modeRenameTour:
                                _, err := m.store.RenameTour(target, value)
                                return err
                        case modeEditStep:
                                _, err := m.store.UpdateStepDescription(target, value)
                                return err
                        }
                        return nil
                })
                return m, nil
        }
        var cmd tea.Cmd
        m.input, cmd = m.input.Update(msg)
        return m, cmd
}

// apply runs a store mutation and reports its error in the status line.
func (m *appModel) apply(fn func() error) {
        if err := fn(); err != nil {
                m.host.Notify(err.Error(), host.SeverityError)
        }
        m.refresh()
}

// refresh rebuilds both lists from the store, keeping selections in range.
func (m *appModel) refresh() {
        snap := m.store.Snapshot()
        active, _ := m.store.ActiveTour()

        tourIdx := m.tours.Index()
        first := len(m.tours.Items()) == 0
        items := make([]list.Item, 0, len(snap.Tours))
        for i, t := range snap.Tours {
                items = append(items, tourItem{tour: t, active: t.ID == active.ID})
                if first && t.ID == active.ID {
                        tourIdx = i
                }
        }
        m.tours.SetItems(items)
        if tourIdx >= len(items) {
                tourIdx = len(items) - 1
        }
        if tourIdx >= 0 {
                m.tours.Select(tourIdx)
        }
        m.tours.Title = fmt.Sprintf("Tours (%d)", len(items))

        cur := -1
        if m.sess.State() == session.Active && m.sess.TourID() == active.ID {
                cur = m.sess.Index()
        }
        stepIdx := m.steps.Index()
        steps := active.SortedSteps()
        sitems := make([]list.Item, 0, len(steps))
        for i, st := range steps {
                sitems = append(sitems, stepItem{step: st, pos: i + 1, current: i == cur})
        }
        m.steps.SetItems(sitems)
        if stepIdx >= len(sitems) {
                stepIdx = len(sitems) - 1
        }
        if stepIdx >= 0 {
                m.steps.Select(stepIdx)
        }
        if active.ID != "" {
                m.steps.Title = "Steps · " + active.Name
        } else {
                m.steps.Title = "Steps"
        }
        m.updateDetail()
}

// followSession moves the step cursor to the session's current step.
func (m *appModel) followSession() {
        m.refresh()
        if i := m.sess.Index(); i >= 0 {
                m.steps.Select(i)
                m.focus = focusSteps
                m.updateDetail()
        }
}

func stepLines(steps []model.Step) []int {
        out := make([]int, 0, len(steps))
        for _, st := range steps {
                out = append(out, st.Line)
        }
        return out
}

func (m appModel) selectedTour() (model.Tour, bool) {
        it, ok := m.tours.SelectedItem().(tourItem)
        if !ok {
                return model.Tour{}, false
        }
        return it.tour, true
}

func (m appModel) selectedStep() (model.Step, bool) {
        it, ok := m.steps.SelectedItem().(stepItem)
        if !ok {
                return model.Step{}, false
        }
        return it.step, true
}

func (m *appModel) layout() {
        if m.width <= 0 || m.height <= 0 {
                return
        }
        leftW := m.width / 3
        if leftW < 24 {
                leftW = 24
        }
        rightW := m.width - leftW
        footer := lipgloss.Height(m.footerView())
        bodyH := m.height - footer
        if bodyH < 8 {
                bodyH = 8
        }
        frameW, frameH := paneStyle.GetFrameSize()

        toursH := bodyH / 3
        m.tours.SetSize(leftW-frameW, toursH-frameH)
        m.steps.SetSize(leftW-frameW, bodyH-toursH-frameH)
        m.detail.Width = max(rightW-frameW, 10)
        m.detail.Height = max(bodyH-frameH, 3)
        m.help.Width = m.width
}

func (m *appModel) updateDetail() {
        st, ok := m.selectedStep()
        if !ok {
                m.detail.SetContent(mutedStyle.Render("No steps in this tour.\n\nAdd one from the CLI:\n  devtour steps add <file>:<line> -d \"...\""))
                return
        }
        var b strings.Builder
        b.WriteString(titleStyle.Render(st.Label()))
        b.WriteString("\n")
        if loc := st.Location(); loc != "" {
                b.WriteString(locationStyle.Render("→ " + loc))
                if m.host.isHighlighted(st.File, st.Line) {
                        b.WriteString(" " + highlightStyle.Render("● current"))
                }
                b.WriteString("\n")
        }
        if d := renderMarkdown(st.Description, m.mdStyle, m.detail.Width); d != "" {
                b.WriteString("\n")
                b.WriteString(d)
                b.WriteString("\n")
        }
        if st.File != "" {
                lines, err := host.ReadSnippet(m.project.AbsPath(st.File), st.Line, m.context)
                host.MarkSteps(lines, stepLines(m.store.StepsForFile(st.File)))
                if len(lines) > 0 {
                        b.WriteString("\n")
                        b.WriteString(mutedStyle.Render(strings.TrimRight(host.FormatSnippet(lines), "\n")))
                        b.WriteString("\n")
                }
                if err != nil {
                        b.WriteString("\n")
                        b.WriteString(statusWarnStyle.Render(err.Error()))
                        b.WriteString("\n")
                }
        }
        m.detail.SetContent(b.String())
        m.detail.GotoTop()
}

func (m appModel) footerView() string {
        parts := []string{}
        if m.mode == modeNewTour || m.mode == modeRenameTour || m.mode == modeEditStep {
                parts = append(parts, m.input.View())
        }
        state := "idle"
        if m.sess.State() == session.Active {
                state = fmt.Sprintf("step %d/%d", m.sess.Index()+1, len(m.sess.Steps()))
        }
        line := mutedStyle.Render("["+state+"]")
        if at := m.host.highlight(); at != "" {
                line += " " + highlightStyle.Render("at "+at)
        }
        line += " " + m.host.status()
        parts = append(parts, line, m.help.View(m.keys))
        return strings.Join(parts, "\n")
}

func (m appModel) View() string {
        toursPane, stepsPane := paneStyle, paneStyle
        if m.focus == focusTours {
                toursPane = focusedPaneStyle
        } else {
                stepsPane = focusedPaneStyle
        }
        left := lipgloss.JoinVertical(lipgloss.Left,
                toursPane.Render(m.tours.View()),
                stepsPane.Render(m.steps.View()),
        )
        right := paneStyle.Render(m.detail.View())
        body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
        return lipgloss.JoinVertical(lipgloss.Left, body, m.footerView())
}
