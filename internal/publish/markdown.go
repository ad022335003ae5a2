package publish

import (
        "bytes"
        "fmt"
        "path/filepath"
        "strings"

        "devtour/internal/host"
        "devtour/internal/model"
)

type RenderOptions struct {
        // Root enables code excerpts read from the project checkout.
        Root    string
        Context int
}

func RenderTourMarkdown(t model.Tour, opt RenderOptions) string {
        var buf bytes.Buffer
        writeLn := func(s string) {
                buf.WriteString(s)
                buf.WriteString("\n")
        }

        writeLn("# " + strings.TrimSpace(t.Name))
        writeLn("")
        writeLn("- ID: " + t.ID)
        writeLn(fmt.Sprintf("- Steps: %d", len(t.Steps)))

        for i, st := range t.SortedSteps() {
                writeLn("")
                writeLn(fmt.Sprintf("## %d. %s", i+1, st.Label()))
                writeLn("")
                if loc := st.Location(); loc != "" {
                        writeLn("`" + loc + "`")
                        writeLn("")
                }
                if d := strings.TrimSpace(st.Description); d != "" {
                        writeLn(d)
                        writeLn("")
                }
                if excerpt := renderExcerpt(st, opt); excerpt != "" {
                        writeLn("```" + fenceLang(st.File))
                        buf.WriteString(excerpt)
                        writeLn("```")
                }
        }
        return strings.TrimRight(buf.String(), "\n") + "\n"
}

func renderExcerpt(st model.Step, opt RenderOptions) string {
        if strings.TrimSpace(opt.Root) == "" || st.File == "" || st.Line <= 0 {
                return ""
        }
        lines, err := host.ReadSnippet(filepath.Join(opt.Root, filepath.FromSlash(st.File)), st.Line, opt.Context)
        if err != nil {
                return ""
        }
        var b strings.Builder
        for _, l := range lines {
                b.WriteString(l.Text)
                b.WriteString("\n")
        }
        return b.String()
}

func fenceLang(file string) string {
        ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
        switch ext {
        case "":
                return ""
        case "yml":
                return "yaml"
        case "md":
                return "markdown"
        case "sh", "bash":
                return "bash"
        }
        return ext
}

// RenderIndexMarkdown lists tours with links to their pages.
func RenderIndexMarkdown(c model.Collection) string {
        return renderIndex(c, "md")
}

func renderIndex(c model.Collection, ext string) string {
        var buf bytes.Buffer
        buf.WriteString("# Tours\n\n")
        if len(c.Tours) == 0 {
                buf.WriteString("_No tours._\n")
                return buf.String()
        }
        for _, t := range c.Tours {
                mark := ""
                if t.ID == c.ActiveTourID {
                        mark = " (active)"
                }
                fmt.Fprintf(&buf, "- [%s](tours/%s.%s)%s: %d steps\n", strings.TrimSpace(t.Name), t.ID, ext, mark, len(t.Steps))
        }
        return buf.String()
}
