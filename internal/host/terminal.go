package host

import (
        "bufio"
        "errors"
        "fmt"
        "io"
        "os"
        "os/exec"
        "path/filepath"
        "strconv"
        "strings"

        "github.com/charmbracelet/lipgloss"
)

var (
        locationStyle = lipgloss.NewStyle().Bold(true)
        warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#E3B341"})
        errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF7B72"})
        faintStyle    = lipgloss.NewStyle().Faint(true)
)

// Terminal is a line-oriented host: notifications and snippets go to Out,
// prompts read from In, and RevealLocation optionally runs an editor command.
type Terminal struct {
        Root string
        In   io.Reader
        Out  io.Writer

        // RevealCommand is a template such as "code -g {abs}:{line}".
        RevealCommand string
        Context       int

        // run executes the reveal command; swapped in tests.
        run func(name string, args ...string) error

        reader *bufio.Reader
}

func NewTerminal(root string, in io.Reader, out io.Writer) *Terminal {
        return &Terminal{Root: root, In: in, Out: out, Context: 3}
}

func (t *Terminal) Notify(message string, severity Severity) {
        switch severity {
        case SeverityWarning:
                fmt.Fprintln(t.Out, warningStyle.Render("warning: ")+message)
        case SeverityError:
                fmt.Fprintln(t.Out, errorStyle.Render("error: ")+message)
        default:
                fmt.Fprintln(t.Out, message)
        }
}

func (t *Terminal) RevealLocation(file string, line int) error {
        file = strings.TrimSpace(file)
        if file == "" {
                return errors.New("step has no file")
        }
        abs := filepath.Join(t.Root, filepath.FromSlash(file))

        if cmd := strings.TrimSpace(t.RevealCommand); cmd != "" {
                name, args := RevealArgs(cmd, file, abs, line)
                run := t.run
                if run == nil {
                        run = t.runAttached
                }
                if err := run(name, args...); err != nil {
                        return fmt.Errorf("reveal %s: %w", file, err)
                }
                return nil
        }

        loc := file
        if line > 0 {
                loc = file + ":" + strconv.Itoa(line)
        }
        fmt.Fprintln(t.Out, locationStyle.Render("→ "+loc))
        lines, err := ReadSnippet(abs, line, t.Context)
        if len(lines) > 0 {
                fmt.Fprint(t.Out, faintStyle.Render(strings.TrimRight(FormatSnippet(lines), "\n"))+"\n")
        }
        return err
}

// RevealArgs expands a reveal template into a command name and arguments.
// {file} is the project-relative path, {abs} the absolute one and {line} the
// 1-based line (1 when the step has none). A blank template yields "".
func RevealArgs(tmpl, file, abs string, line int) (string, []string) {
        if line <= 0 {
                line = 1
        }
        r := strings.NewReplacer("{file}", file, "{abs}", abs, "{line}", strconv.Itoa(line))
        fields := strings.Fields(tmpl)
        if len(fields) == 0 {
                return "", nil
        }
        for i := range fields {
                fields[i] = r.Replace(fields[i])
        }
        return fields[0], fields[1:]
}

// runAttached runs the reveal command with its output on t.Out, so it lands
// wherever the rest of the host output goes.
func (t *Terminal) runAttached(name string, args ...string) error {
        c := exec.Command(name, args...)
        c.Stdin = os.Stdin
        c.Stdout = t.Out
        c.Stderr = os.Stderr
        return c.Run()
}

func (t *Terminal) ClearHighlight() {}

func (t *Terminal) readLine() (string, error) {
        if t.In == nil {
                return "", ErrCancelled
        }
        if t.reader == nil {
                t.reader = bufio.NewReader(t.In)
        }
        s, err := t.reader.ReadString('\n')
        if err != nil {
                if !errors.Is(err, io.EOF) {
                        return "", err
                }
                if s == "" {
                        return "", ErrCancelled
                }
        }
        return strings.TrimRight(s, "\r\n"), nil
}

func (t *Terminal) PromptText(prompt string) (string, error) {
        fmt.Fprint(t.Out, prompt+" ")
        return t.readLine()
}

func (t *Terminal) PromptChoice(prompt string, options []string) (int, error) {
        if len(options) == 0 {
                return -1, ErrCancelled
        }
        fmt.Fprintln(t.Out, prompt)
        for i, o := range options {
                fmt.Fprintf(t.Out, "  %d) %s\n", i+1, o)
        }
        for attempt := 0; attempt < 3; attempt++ {
                fmt.Fprint(t.Out, "> ")
                s, err := t.readLine()
                if err != nil {
                        return -1, err
                }
                s = strings.TrimSpace(s)
                if s == "" || s == "q" {
                        return -1, ErrCancelled
                }
                n, err := strconv.Atoi(s)
                if err == nil && n >= 1 && n <= len(options) {
                        return n - 1, nil
                }
                fmt.Fprintf(t.Out, "enter a number between 1 and %d\n", len(options))
        }
        return -1, ErrCancelled
}

func (t *Terminal) Confirm(message string) (bool, error) {
        fmt.Fprint(t.Out, message+" [y/N] ")
        s, err := t.readLine()
        if err != nil {
                if errors.Is(err, ErrCancelled) {
                        return false, nil
                }
                return false, err
        }
        switch strings.ToLower(strings.TrimSpace(s)) {
        case "y", "yes":
                return true, nil
        default:
                return false, nil
        }
}
