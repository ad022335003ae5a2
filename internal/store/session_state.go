package store

import (
        "encoding/json"
        "errors"
        "os"
        "path/filepath"
        "strings"

        "devtour/internal/model"
)

const sessionStateFileName = "session.json"

// SessionState remembers the walkthrough position between CLI invocations.
//
// It lives in .devtour/.local/ so it stays machine-local. It is best effort:
// callers treat missing or invalid data as an idle session.
type SessionState struct {
        Version int    `json:"version"`
        TourID  string `json:"tourId,omitempty"`
        StepID  string `json:"stepId,omitempty"`
        // Step is the step as last shown, matched by content when StepID is gone.
        Step *model.Step `json:"step,omitempty"`
        // Index is -1 when idle.
        Index int `json:"index"`
}

func idleSessionState() *SessionState {
        return &SessionState{Version: 1, Index: -1}
}

func (s Store) sessionStatePath() string {
        return filepath.Join(s.localDir(), sessionStateFileName)
}

func (s Store) LoadSessionState() (*SessionState, error) {
        if strings.TrimSpace(s.Root) == "" {
                return idleSessionState(), nil
        }
        b, err := os.ReadFile(s.sessionStatePath())
        if err != nil {
                if errors.Is(err, os.ErrNotExist) {
                        return idleSessionState(), nil
                }
                return nil, err
        }
        st := idleSessionState()
        if err := json.Unmarshal(b, st); err != nil {
                // Best-effort; if corrupted, treat as missing.
                return idleSessionState(), nil
        }
        if st.Version == 0 {
                st.Version = 1
        }
        return st, nil
}

func (s Store) SaveSessionState(st *SessionState) error {
        if st == nil || strings.TrimSpace(s.Root) == "" {
                return nil
        }
        if err := os.MkdirAll(s.localDir(), 0o755); err != nil {
                return err
        }
        if st.Version == 0 {
                st.Version = 1
        }
        b, err := json.MarshalIndent(st, "", "  ")
        if err != nil {
                return err
        }
        return atomicWriteFile(s.localDir(), sessionStateFileName+".*.tmp", s.sessionStatePath(), b, 0o644)
}
