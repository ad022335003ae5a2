package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
        Up       key.Binding
        Down     key.Binding
        Focus    key.Binding
        Activate key.Binding
        Start    key.Binding
        Next     key.Binding
        Prev     key.Binding
        Stop     key.Binding
        NewTour  key.Binding
        Edit     key.Binding
        Delete   key.Binding
        MoveUp   key.Binding
        MoveDown key.Binding
        Reload   key.Binding
        Help     key.Binding
        Quit     key.Binding
}

func defaultKeyMap() keyMap {
        return keyMap{
                Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
                Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
                Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
                Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use tour")),
                Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
                Next:     key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next")),
                Prev:     key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "prev")),
                Stop:     key.NewBinding(key.WithKeys("x", "esc"), key.WithHelp("x", "stop")),
                NewTour:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new tour")),
                Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit step / rename tour")),
                Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
                MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move step up")),
                MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move step down")),
                Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
                Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
                Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
        }
}

func (k keyMap) ShortHelp() []key.Binding {
        return []key.Binding{k.Start, k.Next, k.Prev, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
        return [][]key.Binding{
                {k.Up, k.Down, k.Focus, k.Activate},
                {k.Start, k.Next, k.Prev, k.Stop},
                {k.NewTour, k.Edit, k.Delete, k.MoveUp, k.MoveDown},
                {k.Reload, k.Help, k.Quit},
        }
}
