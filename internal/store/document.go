package store

import (
        "bytes"
        "encoding/json"
        "math"
        "strings"

        "devtour/internal/model"
)

// Shape classifies raw document bytes before decoding.
type Shape string

const (
        ShapeMissing   Shape = "missing"   // no document on disk
        ShapeEmpty     Shape = "empty"     // zero bytes or whitespace
        ShapeMalformed Shape = "malformed" // not JSON
        ShapeUnknown   Shape = "unknown"   // JSON, but neither supported layout
        ShapeLegacy    Shape = "legacy"    // bare array of steps
        ShapeCurrent   Shape = "current"   // {"tours": [...], "activeTourId": ...}
)

// rawDocument is the tagged union produced by the first decode step.
// Only the field matching shape is populated.
type rawDocument struct {
        shape Shape

        // ShapeCurrent
        tours        []json.RawMessage
        activeTourID string

        // ShapeLegacy
        steps []json.RawMessage
}

func decodeRaw(b []byte) rawDocument {
        if b == nil {
                return rawDocument{shape: ShapeMissing}
        }
        if len(bytes.TrimSpace(b)) == 0 {
                return rawDocument{shape: ShapeEmpty}
        }

        var obj map[string]json.RawMessage
        if err := json.Unmarshal(b, &obj); err == nil {
                toursRaw, ok := obj["tours"]
                if obj == nil || !ok {
                        return rawDocument{shape: ShapeUnknown}
                }
                doc := rawDocument{shape: ShapeCurrent}
                // A non-array "tours" value decodes as zero tours.
                _ = json.Unmarshal(toursRaw, &doc.tours)
                if v, ok := obj["activeTourId"]; ok {
                        var s string
                        if json.Unmarshal(v, &s) == nil {
                                doc.activeTourID = strings.TrimSpace(s)
                        }
                }
                return doc
        }

        var arr []json.RawMessage
        if err := json.Unmarshal(b, &arr); err == nil {
                return rawDocument{shape: ShapeLegacy, steps: arr}
        }

        if json.Valid(b) {
                return rawDocument{shape: ShapeUnknown}
        }
        return rawDocument{shape: ShapeMalformed}
}

// DetectShape reports which of the accepted layouts b uses (nil means "absent").
func DetectShape(b []byte) Shape {
        return decodeRaw(b).shape
}

// Parse decodes document bytes into a fully normalized collection.
//
// Absent, empty, malformed or unrecognized input yields an empty collection; Parse
// never fails. Missing ids, orders, names and tour back-references are filled in,
// and each tour's steps are sorted by (order, file, line).
func Parse(b []byte) model.Collection {
        raw := decodeRaw(b)
        switch raw.shape {
        case ShapeLegacy:
                return parseLegacy(raw.steps)
        case ShapeCurrent:
                return parseCurrent(raw.tours, raw.activeTourID)
        default:
                return emptyCollection()
        }
}

// HasUnstableIDs reports whether Parse(b) issues ids that b does not store.
// Those ids are random, so they differ on every parse until b is rewritten.
func HasUnstableIDs(b []byte) bool {
        raw := decodeRaw(b)
        stored := map[string]bool{}
        switch raw.shape {
        case ShapeLegacy:
                // The synthesized tour never has a stored id.
                return true
        case ShapeCurrent:
                tourObjs := decodeObjects(raw.tours)
                collectIDs(tourObjs, stored)
                for _, to := range tourObjs {
                        var rs []json.RawMessage
                        if v, ok := to["steps"]; ok {
                                _ = json.Unmarshal(v, &rs)
                        }
                        collectIDs(decodeObjects(rs), stored)
                }
        default:
                return false
        }

        // Parse keeps a stored id once and re-issues missing or duplicate ones.
        c := parseCurrent(raw.tours, raw.activeTourID)
        for _, t := range c.Tours {
                if !stored[t.ID] {
                        return true
                }
                for _, st := range t.Steps {
                        if !stored[st.ID] {
                                return true
                        }
                }
        }
        return false
}

func emptyCollection() model.Collection {
        return model.Collection{Tours: []model.Tour{}}
}

func parseLegacy(rawSteps []json.RawMessage) model.Collection {
        objs := decodeObjects(rawSteps)
        reserved := map[string]bool{}
        collectIDs(objs, reserved)

        taken := map[string]bool{}
        tourID := freshID(tourIDPrefix, mergeTaken(taken, reserved))
        taken[tourID] = true
        tour := model.Tour{
                ID:    tourID,
                Name:  model.LegacyTourName,
                Steps: decodeSteps(objs, tourID, taken, reserved),
        }
        model.SortSteps(tour.Steps)
        return model.Collection{Tours: []model.Tour{tour}, ActiveTourID: tourID}
}

func parseCurrent(rawTours []json.RawMessage, activeTourID string) model.Collection {
        tourObjs := decodeObjects(rawTours)

        // Every id that appears anywhere in the document is reserved up front so a
        // fresh id can't collide with one that shows up later in the file.
        reserved := map[string]bool{}
        collectIDs(tourObjs, reserved)
        stepObjs := make([][]map[string]json.RawMessage, len(tourObjs))
        for i, to := range tourObjs {
                var rs []json.RawMessage
                if v, ok := to["steps"]; ok {
                        _ = json.Unmarshal(v, &rs)
                }
                stepObjs[i] = decodeObjects(rs)
                collectIDs(stepObjs[i], reserved)
        }

        taken := map[string]bool{}
        out := model.Collection{Tours: make([]model.Tour, 0, len(tourObjs))}
        for i, to := range tourObjs {
                id, _ := rawString(to, "id")
                id = strings.TrimSpace(id)
                if id == "" || taken[id] {
                        id = freshID(tourIDPrefix, mergeTaken(taken, reserved))
                }
                taken[id] = true

                name, _ := rawString(to, "name")
                if strings.TrimSpace(name) == "" {
                        name = model.DefaultTourName(i + 1)
                }
                tour := model.Tour{ID: id, Name: name, Steps: decodeSteps(stepObjs[i], id, taken, reserved)}
                model.SortSteps(tour.Steps)
                out.Tours = append(out.Tours, tour)
        }

        if _, ok := out.FindTour(activeTourID); ok {
                out.ActiveTourID = activeTourID
        } else if len(out.Tours) > 0 {
                out.ActiveTourID = out.Tours[0].ID
        }
        return out
}

func mergeTaken(a, b map[string]bool) map[string]bool {
        m := make(map[string]bool, len(a)+len(b))
        for k := range a {
                m[k] = true
        }
        for k := range b {
                m[k] = true
        }
        return m
}

func decodeObjects(raws []json.RawMessage) []map[string]json.RawMessage {
        out := make([]map[string]json.RawMessage, 0, len(raws))
        for _, r := range raws {
                var m map[string]json.RawMessage
                if err := json.Unmarshal(r, &m); err != nil || m == nil {
                        continue
                }
                out = append(out, m)
        }
        return out
}

func collectIDs(objs []map[string]json.RawMessage, into map[string]bool) {
        for _, o := range objs {
                if id, ok := rawString(o, "id"); ok && strings.TrimSpace(id) != "" {
                        into[strings.TrimSpace(id)] = true
                }
        }
}

// decodeSteps keeps the first occurrence of each id and issues fresh ids
// (outside taken and reserved) for missing or duplicate ones. Position-based
// order is 1-based over the decodable entries.
func decodeSteps(objs []map[string]json.RawMessage, tourID string, taken, reserved map[string]bool) []model.Step {
        steps := make([]model.Step, 0, len(objs))
        for i, o := range objs {
                id, _ := rawString(o, "id")
                id = strings.TrimSpace(id)
                if id == "" || taken[id] {
                        id = freshID(stepIDPrefix, mergeTaken(taken, reserved))
                }
                taken[id] = true

                s := model.Step{ID: id, TourID: tourID}
                if f, ok := rawString(o, "file"); ok {
                        s.File = NormalizeFilePath(f)
                }
                if line, ok := rawPositiveInt(o, "line"); ok {
                        s.Line = line
                }
                if d, ok := rawString(o, "description"); ok {
                        s.Description = d
                }
                if order, ok := rawPositiveInt(o, "order"); ok {
                        s.Order = order
                } else {
                        s.Order = i + 1
                }
                steps = append(steps, s)
        }
        return steps
}

func rawString(m map[string]json.RawMessage, key string) (string, bool) {
        v, ok := m[key]
        if !ok {
                return "", false
        }
        var s string
        if err := json.Unmarshal(v, &s); err != nil {
                return "", false
        }
        return s, true
}

func rawPositiveInt(m map[string]json.RawMessage, key string) (int, bool) {
        v, ok := m[key]
        if !ok {
                return 0, false
        }
        var f float64
        if err := json.Unmarshal(v, &f); err != nil {
                return 0, false
        }
        if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
                return 0, false
        }
        return int(f), true
}

// NormalizeFilePath converts a project-relative path to forward slashes and drops a leading "./".
func NormalizeFilePath(p string) string {
        p = strings.TrimSpace(p)
        p = strings.ReplaceAll(p, "\\", "/")
        for strings.HasPrefix(p, "./") {
                p = strings.TrimPrefix(p, "./")
        }
        return p
}

// Normalize backfills everything Serialize promises: tour names, step orders,
// tour back-references, ids, a valid active tour, and canonical step order.
// It is idempotent.
func Normalize(c *model.Collection) {
        if c == nil {
                return
        }
        if c.Tours == nil {
                c.Tours = []model.Tour{}
        }
        taken := map[string]bool{}
        for _, t := range c.Tours {
                if t.ID != "" {
                        taken[t.ID] = true
                }
                for _, s := range t.Steps {
                        if s.ID != "" {
                                taken[s.ID] = true
                        }
                }
        }
        for i := range c.Tours {
                t := &c.Tours[i]
                if strings.TrimSpace(t.ID) == "" {
                        t.ID = NewTourID(taken)
                }
                if strings.TrimSpace(t.Name) == "" {
                        t.Name = model.DefaultTourName(i + 1)
                }
                if t.Steps == nil {
                        t.Steps = []model.Step{}
                }
                for j := range t.Steps {
                        s := &t.Steps[j]
                        if strings.TrimSpace(s.ID) == "" {
                                s.ID = NewStepID(taken)
                        }
                        if s.Order <= 0 {
                                s.Order = j + 1
                        }
                        if s.Line < 0 {
                                s.Line = 0
                        }
                        s.File = NormalizeFilePath(s.File)
                        s.TourID = t.ID
                }
                model.SortSteps(t.Steps)
        }
        if _, ok := c.FindTour(c.ActiveTourID); !ok {
                c.ActiveTourID = ""
                if len(c.Tours) > 0 {
                        c.ActiveTourID = c.Tours[0].ID
                }
        }
}

// Serialize returns the canonical pretty-printed document for c.
// c itself is not modified.
func Serialize(c model.Collection) ([]byte, error) {
        out := c.Clone()
        Normalize(&out)
        b, err := json.MarshalIndent(out, "", "  ")
        if err != nil {
                return nil, err
        }
        return append(b, '\n'), nil
}
