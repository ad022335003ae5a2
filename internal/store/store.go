package store

import (
        "errors"
        "fmt"
        "os"
        "path/filepath"
        "strings"

        "devtour/internal/model"
)

const (
        dirName          = ".devtour"
        localDirName     = ".local"
        documentFileName = "devtour.json"
)

var (
        // ErrNoWorkspace means no project root could be resolved.
        ErrNoWorkspace = errors.New("no workspace: could not resolve a project root")
        // ErrNoTarget means a file path could not be mapped into the project.
        ErrNoTarget = errors.New("no target: file is not inside the project")
)

// Store is the file-backed home of a project's tour document:
// <Root>/.devtour/devtour.json.
type Store struct {
        Root string
}

// DiscoverRoot walks up from start to the first directory containing .devtour/.
func DiscoverRoot(start string) (string, bool) {
        dir := start
        for {
                candidate := filepath.Join(dir, dirName)
                if st, err := os.Stat(candidate); err == nil && st.IsDir() {
                        return dir, true
                }
                parent := filepath.Dir(dir)
                if parent == dir {
                        return "", false
                }
                dir = parent
        }
}

// DefaultRoot resolves the project root from the working directory, falling back
// to the working directory itself (init creates .devtour/ there).
func DefaultRoot() (string, error) {
        cwd, err := os.Getwd()
        if err != nil {
                return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
        }
        if found, ok := DiscoverRoot(cwd); ok {
                return found, nil
        }
        return cwd, nil
}

func (s Store) root() (string, error) {
        r := strings.TrimSpace(s.Root)
        if r == "" {
                return "", ErrNoWorkspace
        }
        return filepath.Clean(r), nil
}

func (s Store) Dir() string {
        return filepath.Join(filepath.Clean(s.Root), dirName)
}

func (s Store) localDir() string {
        return filepath.Join(s.Dir(), localDirName)
}

func (s Store) DocumentPath() string {
        return filepath.Join(s.Dir(), documentFileName)
}

func (s Store) EnsureParentDirectory() error {
        if _, err := s.root(); err != nil {
                return err
        }
        return os.MkdirAll(s.Dir(), 0o755)
}

func (s Store) DocumentExists() bool {
        if _, err := s.root(); err != nil {
                return false
        }
        st, err := os.Stat(s.DocumentPath())
        return err == nil && !st.IsDir()
}

// ReadDocument returns the raw document bytes, or (nil, nil) when there is no document.
func (s Store) ReadDocument() ([]byte, error) {
        if _, err := s.root(); err != nil {
                return nil, err
        }
        b, err := os.ReadFile(s.DocumentPath())
        if err != nil {
                if errors.Is(err, os.ErrNotExist) {
                        return nil, nil
                }
                return nil, err
        }
        if b == nil {
                b = []byte{}
        }
        return b, nil
}

func (s Store) WriteDocument(b []byte) error {
        if err := s.EnsureParentDirectory(); err != nil {
                return err
        }
        return atomicWriteFile(s.Dir(), documentFileName+".*.tmp", s.DocumentPath(), b, 0o644)
}

// Load parses the document. Unreadable content yields an empty collection; only
// workspace resolution and I/O errors other than "not found" are returned.
func (s Store) Load() (model.Collection, error) {
        b, err := s.ReadDocument()
        if err != nil {
                return Parse(nil), err
        }
        return Parse(b), nil
}

func (s Store) Save(c model.Collection) error {
        b, err := Serialize(c)
        if err != nil {
                return err
        }
        return s.WriteDocument(b)
}

// Init creates .devtour/ with a .gitignore for machine-local state. An existing
// document is rewritten in canonical form; a missing one starts with an empty
// active "Main Tour".
func (s Store) Init() (model.Collection, error) {
        if err := s.EnsureParentDirectory(); err != nil {
                return model.Collection{}, err
        }
        ignore := filepath.Join(s.Dir(), ".gitignore")
        if _, err := os.Stat(ignore); errors.Is(err, os.ErrNotExist) {
                if err := os.WriteFile(ignore, []byte(localDirName+"/\n"), 0o644); err != nil {
                        return model.Collection{}, err
                }
        }
        var c model.Collection
        if s.DocumentExists() {
                loaded, err := s.Load()
                if err != nil {
                        return loaded, err
                }
                c = loaded
        } else {
                c = bootstrapCollection()
        }
        if err := s.Save(c); err != nil {
                return c, err
        }
        return c, nil
}

func bootstrapCollection() model.Collection {
        id := NewTourID(nil)
        return model.Collection{
                Tours:        []model.Tour{{ID: id, Name: model.LegacyTourName, Steps: []model.Step{}}},
                ActiveTourID: id,
        }
}

// RelativePath maps p (absolute, or relative to the working directory) to a
// forward-slash path relative to the project root.
func (s Store) RelativePath(p string) (string, error) {
        root, err := s.root()
        if err != nil {
                return "", err
        }
        p = strings.TrimSpace(p)
        if p == "" {
                return "", ErrNoTarget
        }
        abs := p
        if !filepath.IsAbs(abs) {
                cwd, err := os.Getwd()
                if err != nil {
                        return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
                }
                abs = filepath.Join(cwd, abs)
        }
        rootAbs, err := filepath.Abs(root)
        if err != nil {
                return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
        }
        rel, err := filepath.Rel(rootAbs, filepath.Clean(abs))
        if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
                return "", fmt.Errorf("%w: %s", ErrNoTarget, p)
        }
        return NormalizeFilePath(filepath.ToSlash(rel)), nil
}

// AbsPath resolves a project-relative step file against the root.
func (s Store) AbsPath(rel string) string {
        return filepath.Join(filepath.Clean(s.Root), filepath.FromSlash(rel))
}
