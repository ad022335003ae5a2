package store

import (
        "crypto/rand"
        "encoding/base32"
        "fmt"
        "strings"
        "sync/atomic"
)

const (
        tourIDPrefix = "tour"
        stepIDPrefix = "step"
)

// newRandomID returns prefix-<suffix> where suffix is base32 (lowercase, no padding).
// Steps use 6 chars so they stay easy to type in `devtour steps delete <id>`.
func newRandomID(prefix string) (string, error) {
        n := idSuffixLen(prefix)
        var b [5]byte // 40 bits -> 8 base32 chars
        if _, err := rand.Read(b[:]); err != nil {
                return "", err
        }
        enc := base32.StdEncoding.WithPadding(base32.NoPadding)
        suffix := strings.ToLower(enc.EncodeToString(b[:]))
        if n < len(suffix) {
                suffix = suffix[:n]
        }
        return prefix + "-" + suffix, nil
}

func idSuffixLen(prefix string) int {
        if prefix == stepIDPrefix {
                return 6
        }
        return 8
}

var fallbackSeq atomic.Uint64

// freshID returns an id that is not in taken and records it there.
func freshID(prefix string, taken map[string]bool) string {
        for i := 0; i < 50; i++ {
                id, err := newRandomID(prefix)
                if err != nil {
                        break
                }
                if !taken[id] {
                        taken[id] = true
                        return id
                }
        }
        for {
                // crypto/rand failed or the short space is crowded.
                id := fmt.Sprintf("%s-%d", prefix, fallbackSeq.Add(1))
                if !taken[id] {
                        taken[id] = true
                        return id
                }
        }
}

// NewTourID returns a tour id not present in taken and records it.
func NewTourID(taken map[string]bool) string { return freshID(tourIDPrefix, ensureTaken(taken)) }

// NewStepID returns a step id not present in taken and records it.
func NewStepID(taken map[string]bool) string { return freshID(stepIDPrefix, ensureTaken(taken)) }

func ensureTaken(m map[string]bool) map[string]bool {
        if m == nil {
                return map[string]bool{}
        }
        return m
}
