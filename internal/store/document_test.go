package store

import (
        "bytes"
        "encoding/json"
        "strings"
        "testing"

        "devtour/internal/model"
)

func TestParse_RecoversFromUnusableInput(t *testing.T) {
        cases := map[string][]byte{
                "absent":       nil,
                "empty":        []byte(""),
                "whitespace":   []byte("  \n\t"),
                "malformed":    []byte(`{"tours": [`),
                "number":       []byte(`42`),
                "string":       []byte(`"hello"`),
                "null":         []byte(`null`),
                "object sans":  []byte(`{"steps": []}`),
                "tours string": []byte(`{"tours": "nope"}`),
        }
        for name, in := range cases {
                t.Run(name, func(t *testing.T) {
                        c := Parse(in)
                        if len(c.Tours) != 0 {
                                t.Fatalf("expected no tours, got %#v", c.Tours)
                        }
                        if c.ActiveTourID != "" {
                                t.Fatalf("expected no active tour, got %q", c.ActiveTourID)
                        }
                })
        }
}

func TestDetectShape(t *testing.T) {
        cases := []struct {
                in   []byte
                want Shape
        }{
                {nil, ShapeMissing},
                {[]byte(" "), ShapeEmpty},
                {[]byte("{oops"), ShapeMalformed},
                {[]byte(`true`), ShapeUnknown},
                {[]byte(`{"other": 1}`), ShapeUnknown},
                {[]byte(`[]`), ShapeLegacy},
                {[]byte(`{"tours": []}`), ShapeCurrent},
        }
        for _, tc := range cases {
                if got := DetectShape(tc.in); got != tc.want {
                        t.Fatalf("DetectShape(%q) = %q, want %q", tc.in, got, tc.want)
                }
        }
}

func TestParse_LegacyArrayBecomesMainTour(t *testing.T) {
        in := []byte(`[
  {"file": "src/a.go", "line": 10, "description": "first"},
  {"file": "src/b.go", "line": 5, "description": null},
  {"file": "src/c.go", "line": 1}
]`)
        c := Parse(in)
        if len(c.Tours) != 1 {
                t.Fatalf("expected one tour, got %d", len(c.Tours))
        }
        tour := c.Tours[0]
        if tour.Name != "Main Tour" {
                t.Fatalf("expected Main Tour, got %q", tour.Name)
        }
        if tour.ID == "" || c.ActiveTourID != tour.ID {
                t.Fatalf("expected active tour to be synthesized tour; active=%q id=%q", c.ActiveTourID, tour.ID)
        }
        if len(tour.Steps) != 3 {
                t.Fatalf("expected 3 steps, got %d", len(tour.Steps))
        }
        wantFiles := []string{"src/a.go", "src/b.go", "src/c.go"}
        ids := map[string]bool{}
        for i, s := range tour.Steps {
                if s.Order != i+1 {
                        t.Fatalf("step %d: expected order %d, got %d", i, i+1, s.Order)
                }
                if s.File != wantFiles[i] {
                        t.Fatalf("step %d: expected file %q, got %q", i, wantFiles[i], s.File)
                }
                if s.TourID != tour.ID {
                        t.Fatalf("step %d: tourId %q != %q", i, s.TourID, tour.ID)
                }
                if s.ID == "" || ids[s.ID] {
                        t.Fatalf("step %d: missing or duplicate id %q", i, s.ID)
                }
                ids[s.ID] = true
        }
        if tour.Steps[1].Description != "" {
                t.Fatalf("null description should normalize to empty, got %q", tour.Steps[1].Description)
        }
}

func TestParse_LegacyKeepsExistingIDsAndOrders(t *testing.T) {
        c := Parse([]byte(`[{"id": "step-keep", "order": 2, "file": "b.go"}, {"file": "a.go"}]`))
        steps := c.Tours[0].Steps
        if steps[0].Order != 2 || steps[1].Order != 2 {
                t.Fatalf("orders must be preserved, not renumbered: %#v", steps)
        }
        // Tie on order: sorted by file, so the positional a.go comes first.
        if steps[0].File != "a.go" || steps[1].ID != "step-keep" {
                t.Fatalf("unexpected sort: %#v", steps)
        }
}

func TestParse_CurrentShapeBackfillsDefaults(t *testing.T) {
        in := []byte(`{
  "tours": [
    {"name": "  ", "steps": [
      {"file": "b.go", "line": 3},
      {"id": "step-x", "file": "a.go", "order": 1, "tourId": "somewhere-else"}
    ]},
    {"id": "tour-two", "name": "Second", "steps": "garbage"},
    "not a tour"
  ],
  "activeTourId": "tour-missing"
}`)
        c := Parse(in)
        if len(c.Tours) != 2 {
                t.Fatalf("expected 2 tours, got %d", len(c.Tours))
        }
        first := c.Tours[0]
        if first.ID == "" {
                t.Fatalf("expected generated tour id")
        }
        if first.Name != "Tour 1" {
                t.Fatalf("expected default name Tour 1, got %q", first.Name)
        }
        if c.ActiveTourID != first.ID {
                t.Fatalf("stale activeTourId should fall back to first tour, got %q", c.ActiveTourID)
        }
        // Both steps have order 1: tie broken by file.
        if first.Steps[0].ID != "step-x" || first.Steps[1].File != "b.go" {
                t.Fatalf("unexpected step sort: %#v", first.Steps)
        }
        for _, s := range first.Steps {
                if s.TourID != first.ID {
                        t.Fatalf("tourId must follow containment: %#v", s)
                }
        }
        if c.Tours[1].ID != "tour-two" || len(c.Tours[1].Steps) != 0 {
                t.Fatalf("unexpected second tour %#v", c.Tours[1])
        }
}

func TestParse_KeepsValidActiveTour(t *testing.T) {
        c := Parse([]byte(`{"tours": [{"id": "t1", "name": "A"}, {"id": "t2", "name": "B"}], "activeTourId": "t2"}`))
        if c.ActiveTourID != "t2" {
                t.Fatalf("expected t2 active, got %q", c.ActiveTourID)
        }
}

func TestParse_DuplicateIDsAreReissued(t *testing.T) {
        c := Parse([]byte(`{"tours": [
  {"id": "dup", "name": "A", "steps": [{"id": "s", "order": 1}, {"id": "s", "order": 2}]},
  {"id": "dup", "name": "B"}
]}`))
        if c.Tours[0].ID != "dup" || c.Tours[1].ID == "dup" {
                t.Fatalf("expected second tour to get a fresh id: %q %q", c.Tours[0].ID, c.Tours[1].ID)
        }
        if c.Tours[0].Steps[0].ID != "s" || c.Tours[0].Steps[1].ID == "s" {
                t.Fatalf("expected second step to get a fresh id: %#v", c.Tours[0].Steps)
        }
}

func TestParse_IgnoresBadLineAndOrderValues(t *testing.T) {
        c := Parse([]byte(`[{"file": "a.go", "line": -3, "order": "x"}, {"file": "b.go", "line": 2.5, "order": 0}]`))
        for i, s := range c.Tours[0].Steps {
                if s.Line != 0 {
                        t.Fatalf("step %d: invalid line should be absent, got %d", i, s.Line)
                }
                if s.Order != i+1 {
                        t.Fatalf("step %d: expected positional order, got %d", i, s.Order)
                }
        }
}

func TestSerialize_BackfillsAndPrettyPrints(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{
                ID: "tour-a",
                Steps: []model.Step{
                        {ID: "s1", File: `src\win.go`, Line: 4},
                        {ID: "s2", Order: 5, TourID: ""},
                },
        }}}
        b, err := Serialize(c)
        if err != nil {
                t.Fatalf("Serialize: %v", err)
        }
        if !bytes.HasSuffix(b, []byte("\n")) || !bytes.Contains(b, []byte("\n  \"tours\"")) {
                t.Fatalf("expected pretty printed output, got:\n%s", b)
        }
        var doc struct {
                Tours []struct {
                        Name  string `json:"name"`
                        Steps []struct {
                                ID     string `json:"id"`
                                File   string `json:"file"`
                                Order  int    `json:"order"`
                                TourID string `json:"tourId"`
                        } `json:"steps"`
                } `json:"tours"`
                ActiveTourID string `json:"activeTourId"`
        }
        if err := json.Unmarshal(b, &doc); err != nil {
                t.Fatalf("unmarshal: %v", err)
        }
        if doc.ActiveTourID != "tour-a" {
                t.Fatalf("expected activeTourId backfilled, got %q", doc.ActiveTourID)
        }
        if doc.Tours[0].Name != "Tour 1" {
                t.Fatalf("expected default name, got %q", doc.Tours[0].Name)
        }
        s := doc.Tours[0].Steps
        if s[0].Order != 1 || s[0].TourID != "tour-a" || s[0].File != "src/win.go" {
                t.Fatalf("unexpected first step %#v", s[0])
        }
        if s[1].Order != 5 || s[1].TourID != "tour-a" {
                t.Fatalf("unexpected second step %#v", s[1])
        }
        if c.Tours[0].Steps[0].Order != 0 {
                t.Fatalf("Serialize must not mutate its argument")
        }
}

func TestSerialize_EmptyCollection(t *testing.T) {
        b, err := Serialize(model.Collection{})
        if err != nil {
                t.Fatalf("Serialize: %v", err)
        }
        if strings.Contains(string(b), "activeTourId") {
                t.Fatalf("empty collection should not carry activeTourId:\n%s", b)
        }
        if !strings.Contains(string(b), `"tours": []`) {
                t.Fatalf("expected empty tours array:\n%s", b)
        }
}

func TestRoundTripIsIdempotent(t *testing.T) {
        inputs := map[string][]byte{
                "absent":    nil,
                "empty":     []byte(""),
                "malformed": []byte("{]"),
                "legacy":    []byte(`[{"file": "a.go", "line": 1}, {"file": "b.go", "description": "two"}, 7]`),
                "current": []byte(`{"tours": [
  {"id": "t1", "name": "", "steps": [{"file": "z.go", "order": 3}, {"file": "./y.go", "line": 9}, {"id": "k"}]},
  {"steps": [{"order": 1, "file": "x.go"}, {"order": 1, "file": "x.go", "line": 2}]}
], "activeTourId": "nope"}`),
        }
        for name, in := range inputs {
                t.Run(name, func(t *testing.T) {
                        once, err := Serialize(Parse(in))
                        if err != nil {
                                t.Fatalf("Serialize: %v", err)
                        }
                        twice, err := Serialize(Parse(once))
                        if err != nil {
                                t.Fatalf("Serialize: %v", err)
                        }
                        if !bytes.Equal(once, twice) {
                                t.Fatalf("round trip not idempotent\nonce:\n%s\ntwice:\n%s", once, twice)
                        }
                })
        }
}

func TestNormalize_RepairsStaleActiveTour(t *testing.T) {
        c := model.Collection{
                Tours:        []model.Tour{{ID: "t1", Name: "A"}, {ID: "t2", Name: "B"}},
                ActiveTourID: "gone",
        }
        Normalize(&c)
        if c.ActiveTourID != "t1" {
                t.Fatalf("expected t1, got %q", c.ActiveTourID)
        }
}

func TestHasUnstableIDs(t *testing.T) {
        cases := []struct {
                name string
                doc  string
                want bool
        }{
                {"absent", "", false},
                {"malformed", `{"tours": [`, false},
                {"legacy", `[{"id": "step-a", "file": "a.go"}]`, true},
                {"current with ids", `{"tours": [{"id": "t1", "name": "A", "steps": [{"id": "s1", "file": "a.go"}]}]}`, false},
                {"tour without id", `{"tours": [{"name": "A", "steps": []}]}`, true},
                {"step without id", `{"tours": [{"id": "t1", "steps": [{"file": "a.go"}]}]}`, true},
                {"duplicate step id", `{"tours": [{"id": "t1", "steps": [{"id": "s1"}, {"id": "s1"}]}]}`, true},
                {"missing names and orders only", `{"tours": [{"id": "t1", "steps": [{"id": "s1"}]}]}`, false},
        }
        for _, tc := range cases {
                var b []byte
                if tc.doc != "" {
                        b = []byte(tc.doc)
                }
                if got := HasUnstableIDs(b); got != tc.want {
                        t.Errorf("%s: HasUnstableIDs = %v, want %v", tc.name, got, tc.want)
                }
        }

        // Once serialized, ids are stable.
        b, err := Serialize(Parse([]byte(`[{"file": "a.go"}, {"file": "b.go"}]`)))
        if err != nil {
                t.Fatal(err)
        }
        if HasUnstableIDs(b) {
                t.Fatalf("serialized document should have stable ids:\n%s", b)
        }
}
