package tui

import (
        "os"
        "strconv"
        "strings"
        "sync"

        "github.com/charmbracelet/glamour"
        "github.com/charmbracelet/lipgloss"
        "github.com/muesli/termenv"
)

var (
        colorAccent = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
        colorMuted  = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
        colorWarn   = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#E3B341"}
        colorError  = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF7B72"}

        paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
        focusedPaneStyle = paneStyle.BorderForeground(colorAccent)
        titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
        mutedStyle       = lipgloss.NewStyle().Foreground(colorMuted)
        locationStyle    = lipgloss.NewStyle().Bold(true)
        statusInfoStyle  = lipgloss.NewStyle().Foreground(colorMuted)
        statusWarnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
        statusErrorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
        highlightStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI. Only
// NO_COLOR disables colors; CLICOLOR is for non-interactive output.
func applyColorProfilePreference() {
        if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
                lipgloss.SetColorProfile(termenv.Ascii)
                return
        }
        profile := termenv.ColorProfile()
        if strings.Contains(strings.ToLower(os.Getenv("TERM")), "256color") && profile == termenv.ANSI {
                profile = termenv.ANSI256
        }
        lipgloss.SetColorProfile(profile)
}

// markdownStyleName picks the glamour style: the configured one, else from the
// terminal background.
func markdownStyleName(configured string) string {
        if s := strings.ToLower(strings.TrimSpace(configured)); s != "" {
                return s
        }
        if termenv.EnvColorProfile() == termenv.Ascii {
                return "notty"
        }
        if termenv.HasDarkBackground() {
                return "dark"
        }
        return "light"
}

var (
        mdRendererMu sync.Mutex
        // Renderers are cached per style and wrap width; building one is not cheap.
        mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md, style string, width int) string {
        md = strings.TrimSpace(md)
        if md == "" {
                return ""
        }
        if width < 10 {
                width = 10
        }
        key := style + ":" + strconv.Itoa(width)

        mdRendererMu.Lock()
        r := mdRenderers[key]
        if r == nil {
                rr, err := glamour.NewTermRenderer(
                        glamour.WithStandardStyle(style),
                        glamour.WithWordWrap(width),
                )
                if err != nil {
                        mdRendererMu.Unlock()
                        return md
                }
                mdRenderers[key] = rr
                r = rr
        }
        mdRendererMu.Unlock()

        out, err := r.Render(md)
        if err != nil {
                return md
        }
        return strings.Trim(out, "\n")
}
