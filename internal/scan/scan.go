// Package scan finds tour markers in Go sources. A marker is a line in a
// declaration's doc comment of the form
//
//	//devtour:<order> optional description
//
// on a func, method or type. Scan returns the marked declarations in order.
package scan

import (
        "context"
        "errors"
        "fmt"
        "go/ast"
        "go/parser"
        "go/token"
        "io"
        "io/fs"
        "log/slog"
        "path/filepath"
        "sort"
        "strconv"
        "strings"
)

const directive = "//devtour:"

// ErrNoEntries is returned by Scan when no marker was found.
var ErrNoEntries = errors.New("no devtour markers found")

// Entry is one marked declaration.
type Entry struct {
        Order       int    `json:"order"`
        Name        string `json:"name"`
        Description string `json:"description,omitempty"`
        Method      bool   `json:"method"`
        // File is slash-separated and relative to the scanned directory.
        File string `json:"file"`
        Line int    `json:"line"`
}

// Format renders the entry as a one-line outline item.
func (e Entry) Format() string {
        icon := "🧱 "
        if e.Method {
                icon = "🔧 "
        }
        s := icon + e.Name
        if strings.TrimSpace(e.Description) != "" {
                s += "  // " + e.Description
        }
        return s
}

type Options struct {
        Logger *slog.Logger
        // IncludeTests also scans _test.go files.
        IncludeTests bool
}

// Scan walks dir and collects marked declarations sorted by order. Entries
// with the same order keep file and line order. Files that do not parse are
// logged and skipped.
func Scan(ctx context.Context, dir string, opts Options) ([]Entry, error) {
        log := opts.Logger
        if log == nil {
                log = slog.New(slog.NewTextHandler(io.Discard, nil))
        }
        log.Info("scanning", "dir", dir)

        var out []Entry
        fset := token.NewFileSet()
        err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
                if err != nil {
                        return err
                }
                if err := ctx.Err(); err != nil {
                        return err
                }
                name := d.Name()
                if d.IsDir() {
                        if path != dir && skipDir(name) {
                                return filepath.SkipDir
                        }
                        return nil
                }
                if !strings.HasSuffix(name, ".go") || (!opts.IncludeTests && strings.HasSuffix(name, "_test.go")) {
                        return nil
                }
                f, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
                if err != nil {
                        log.Warn("skipping unparsable file", "file", path, "err", err)
                        return nil
                }
                rel, err := filepath.Rel(dir, path)
                if err != nil {
                        return err
                }
                for _, e := range entriesIn(fset, f) {
                        e.File = filepath.ToSlash(rel)
                        out = append(out, e)
                }
                return nil
        })
        if err != nil {
                return nil, fmt.Errorf("scan %s: %w", dir, err)
        }
        if len(out) == 0 {
                return nil, ErrNoEntries
        }
        sort.SliceStable(out, func(i, j int) bool {
                if out[i].Order != out[j].Order {
                        return out[i].Order < out[j].Order
                }
                if out[i].File != out[j].File {
                        return out[i].File < out[j].File
                }
                return out[i].Line < out[j].Line
        })
        log.Debug("scan done", "entries", len(out))
        return out, nil
}

func skipDir(name string) bool {
        return name == "vendor" || name == "testdata" || name == "node_modules" ||
                strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func entriesIn(fset *token.FileSet, f *ast.File) []Entry {
        var out []Entry
        for _, decl := range f.Decls {
                switch d := decl.(type) {
                case *ast.FuncDecl:
                        order, desc, ok := parseMarker(d.Doc)
                        if !ok {
                                continue
                        }
                        name := d.Name.Name + "()"
                        if recv := receiverName(d); recv != "" {
                                name = recv + "." + name
                        }
                        out = append(out, Entry{Order: order, Name: name, Description: desc, Method: true, Line: fset.Position(d.Pos()).Line})
                case *ast.GenDecl:
                        if d.Tok != token.TYPE {
                                continue
                        }
                        for _, spec := range d.Specs {
                                ts := spec.(*ast.TypeSpec)
                                doc := ts.Doc
                                // A lone spec in an unparenthesized decl carries its doc on the decl.
                                if doc == nil && !d.Lparen.IsValid() {
                                        doc = d.Doc
                                }
                                order, desc, ok := parseMarker(doc)
                                if !ok {
                                        continue
                                }
                                out = append(out, Entry{Order: order, Name: ts.Name.Name, Description: desc, Line: fset.Position(ts.Pos()).Line})
                        }
                }
        }
        return out
}

func receiverName(d *ast.FuncDecl) string {
        if d.Recv == nil || len(d.Recv.List) == 0 {
                return ""
        }
        t := d.Recv.List[0].Type
        for {
                switch x := t.(type) {
                case *ast.StarExpr:
                        t = x.X
                case *ast.IndexExpr:
                        t = x.X
                case *ast.IndexListExpr:
                        t = x.X
                case *ast.Ident:
                        return x.Name
                default:
                        return ""
                }
        }
}

// parseMarker reads the first //devtour: line of a doc comment.
func parseMarker(doc *ast.CommentGroup) (order int, desc string, ok bool) {
        if doc == nil {
                return 0, "", false
        }
        for _, c := range doc.List {
                rest, found := strings.CutPrefix(c.Text, directive)
                if !found {
                        continue
                }
                num, desc, _ := strings.Cut(strings.TrimSpace(rest), " ")
                n, err := strconv.Atoi(num)
                if err != nil {
                        continue
                }
                return n, strings.TrimSpace(desc), true
        }
        return 0, "", false
}
