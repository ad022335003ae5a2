package publish

import (
        "errors"
        "os"
        "path/filepath"
        "strings"

        "devtour/internal/model"
        "devtour/internal/mutate"
)

type WriteOptions struct {
        // TourID limits the export to one tour; the index is skipped then.
        TourID    string
        Overwrite bool
        // HTML writes .html pages rendered from the same Markdown.
        HTML   bool
        Render RenderOptions
}

type WriteResult struct {
        Written []string `json:"written"`
}

// WriteTours writes tours/<id>.md for each tour plus index.md under toDir.
func WriteTours(c model.Collection, toDir string, opt WriteOptions) (WriteResult, error) {
        toDir = strings.TrimSpace(toDir)
        if toDir == "" {
                return WriteResult{}, errors.New("missing --to")
        }
        toDir = filepath.Clean(toDir)

        selected := c.Tours
        tourID := strings.TrimSpace(opt.TourID)
        if tourID != "" {
                t, ok := c.FindTour(tourID)
                if !ok {
                        return WriteResult{}, mutate.NotFoundError{Kind: "tour", ID: tourID}
                }
                selected = []model.Tour{*t}
        }

        toursDir := filepath.Join(toDir, "tours")
        if err := os.MkdirAll(toursDir, 0o755); err != nil {
                return WriteResult{}, err
        }

        ext := "md"
        page := func(_ string, md string) ([]byte, error) { return []byte(md), nil }
        if opt.HTML {
                ext = "html"
                page = func(title, md string) ([]byte, error) {
                        s, err := RenderHTMLPage(title, md)
                        return []byte(s), err
                }
        }

        written := []string{}
        if tourID == "" {
                indexPath := filepath.Join(toDir, "index."+ext)
                b, err := page("Tours", renderIndex(c, ext))
                if err != nil {
                        return WriteResult{}, err
                }
                if err := writeFile(indexPath, b, opt.Overwrite); err != nil {
                        return WriteResult{}, err
                }
                written = append(written, indexPath)
        }
        for _, t := range selected {
                p := filepath.Join(toursDir, t.ID+"."+ext)
                b, err := page(strings.TrimSpace(t.Name), RenderTourMarkdown(t, opt.Render))
                if err != nil {
                        return WriteResult{}, err
                }
                if err := writeFile(p, b, opt.Overwrite); err != nil {
                        return WriteResult{}, err
                }
                written = append(written, p)
        }
        return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
        if !overwrite {
                if _, err := os.Stat(path); err == nil {
                        return errors.New("file exists (use --overwrite): " + path)
                }
        }
        return os.WriteFile(path, b, 0o644)
}
