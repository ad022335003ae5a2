package host

import (
        "bufio"
        "fmt"
        "os"
        "strings"
)

type SnippetLine struct {
        Number  int    `json:"number"`
        Text    string `json:"text"`
        Current bool   `json:"current,omitempty"`
        // Marked is set when some step points at this line.
        Marked bool `json:"marked,omitempty"`
}

// ReadSnippet returns the lines around line (1-based) with context lines on each
// side. line <= 0 returns the head of the file.
func ReadSnippet(path string, line, context int) ([]SnippetLine, error) {
        f, err := os.Open(path)
        if err != nil {
                return nil, err
        }
        defer f.Close()

        if context < 0 {
                context = 0
        }
        lo, hi := line-context, line+context
        if line <= 0 {
                lo, hi = 1, 1+2*context
        }
        if lo < 1 {
                lo = 1
        }

        var out []SnippetLine
        sc := bufio.NewScanner(f)
        sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
        n := 0
        for sc.Scan() {
                n++
                if n < lo {
                        continue
                }
                if n > hi {
                        break
                }
                out = append(out, SnippetLine{Number: n, Text: strings.TrimRight(sc.Text(), "\r"), Current: n == line})
        }
        if err := sc.Err(); err != nil {
                return nil, err
        }
        if line > n {
                return out, fmt.Errorf("line %d is past end of file (%d lines)", line, n)
        }
        return out, nil
}

// FormatSnippet renders lines as "  12 | text" with a marker on the current line.
func FormatSnippet(lines []SnippetLine) string {
        width := 1
        for _, l := range lines {
                if w := len(fmt.Sprint(l.Number)); w > width {
                        width = w
                }
        }
        var b strings.Builder
        for _, l := range lines {
                marker := " "
                switch {
                case l.Current:
                        marker = ">"
                case l.Marked:
                        marker = "*"
                }
                fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, l.Number, l.Text)
        }
        return b.String()
}

// MarkSteps flags the snippet lines that a step points at.
func MarkSteps(lines []SnippetLine, stepLines []int) {
        at := make(map[int]bool, len(stepLines))
        for _, n := range stepLines {
                at[n] = true
        }
        for i := range lines {
                lines[i].Marked = at[lines[i].Number]
        }
}
