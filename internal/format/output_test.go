package format

import (
        "bytes"
        "strings"
        "testing"

        "gopkg.in/yaml.v3"
)

type sample struct {
        TourID string `json:"tourId"`
        Steps  []int  `json:"steps"`
        Note   string `json:"note,omitempty"`
}

func TestWrite_JSON(t *testing.T) {
        var buf bytes.Buffer
        if err := Write(&buf, map[string]any{"data": sample{TourID: "tour-1", Steps: []int{1, 2}}}, "", false); err != nil {
                t.Fatal(err)
        }
        if got := buf.String(); got != "{\"data\":{\"tourId\":\"tour-1\",\"steps\":[1,2]}}\n" {
                t.Fatalf("unexpected json %q", got)
        }
}

func TestWrite_YAMLUsesJSONFieldNames(t *testing.T) {
        var buf bytes.Buffer
        if err := Write(&buf, map[string]any{"data": sample{TourID: "tour-1", Steps: []int{1, 2}}}, "yaml", false); err != nil {
                t.Fatal(err)
        }
        out := buf.String()
        if !strings.Contains(out, "tourId: tour-1") || strings.Contains(out, "note") {
                t.Fatalf("unexpected yaml:\n%s", out)
        }
        var back map[string]map[string]any
        if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
                t.Fatalf("yaml output does not parse: %v", err)
        }
        if back["data"]["tourId"] != "tour-1" {
                t.Fatalf("unexpected decoded yaml %#v", back)
        }
}

func TestWrite_UnknownFormat(t *testing.T) {
        if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
                t.Fatalf("expected error")
        }
        if Valid("edn") || !Valid("YAML") {
                t.Fatalf("Valid mismatch")
        }
}
