package store

import (
        "context"
        "database/sql"
        "encoding/json"
        "os"
        "path/filepath"
        "strings"
        "time"

        "devtour/internal/model"

        "github.com/google/uuid"
        _ "modernc.org/sqlite"
)

const (
        eventLogFileName = "events.sqlite"
        envEventLog      = "DEVTOUR_EVENTLOG"
)

// EventLogEnabled reports whether mutations should be recorded locally.
// Set DEVTOUR_EVENTLOG=off to disable.
func EventLogEnabled() bool {
        switch strings.ToLower(strings.TrimSpace(os.Getenv(envEventLog))) {
        case "off", "0", "false", "none":
                return false
        default:
                return true
        }
}

func (s Store) eventLogPath() string {
        return filepath.Join(s.localDir(), eventLogFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
        if _, err := s.root(); err != nil {
                return nil, err
        }
        if err := os.MkdirAll(s.localDir(), 0o755); err != nil {
                return nil, err
        }
        // modernc.org/sqlite driver name is "sqlite".
        db, err := sql.Open("sqlite", s.eventLogPath())
        if err != nil {
                return nil, err
        }
        // WAL: one writer + many readers across the CLI, TUI and watcher processes.
        pragmas := []string{
                "PRAGMA journal_mode=WAL;",
                "PRAGMA synchronous=NORMAL;",
                "PRAGMA busy_timeout=5000;",
        }
        for _, p := range pragmas {
                if _, err := db.ExecContext(ctx, p); err != nil {
                        _ = db.Close()
                        return nil, err
                }
        }
        if err := migrateSQLite(ctx, db); err != nil {
                _ = db.Close()
                return nil, err
        }
        return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
        stmts := []string{
                `CREATE TABLE IF NOT EXISTS events (
                        event_id TEXT PRIMARY KEY,
                        issued_at_unixms INTEGER NOT NULL,
                        actor TEXT NOT NULL,
                        type TEXT NOT NULL,
                        entity_id TEXT NOT NULL,
                        payload_json TEXT NOT NULL
                );`,
                `CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
                `CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, issued_at_unixms);`,
        }
        for _, st := range stmts {
                if _, err := db.ExecContext(ctx, st); err != nil {
                        return err
                }
        }
        return nil
}

func currentActor() string {
        for _, k := range []string{"DEVTOUR_ACTOR", "USER", "USERNAME"} {
                if v := strings.TrimSpace(os.Getenv(k)); v != "" {
                        return v
                }
        }
        return "unknown"
}

// RecordEvent appends one entry to the activity log.
func (s Store) RecordEvent(ctx context.Context, typ, entityID string, payload any) error {
        pb, err := json.Marshal(payload)
        if err != nil {
                return err
        }
        db, err := s.openSQLite(ctx)
        if err != nil {
                return err
        }
        defer db.Close()

        _, err = db.ExecContext(ctx,
                `INSERT INTO events(event_id, issued_at_unixms, actor, type, entity_id, payload_json) VALUES (?, ?, ?, ?, ?, ?)`,
                uuid.NewString(),
                time.Now().UTC().UnixMilli(),
                currentActor(),
                strings.TrimSpace(typ),
                strings.TrimSpace(entityID),
                string(pb),
        )
        return err
}

// ReadEvents returns the last limit events (all when limit <= 0), oldest first.
// A missing log reads as empty.
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
        if _, err := os.Stat(s.eventLogPath()); err != nil {
                if os.IsNotExist(err) {
                        return []model.Event{}, nil
                }
                return nil, err
        }
        db, err := s.openSQLite(ctx)
        if err != nil {
                return nil, err
        }
        defer db.Close()

        q := `SELECT event_id, issued_at_unixms, actor, type, entity_id, payload_json
              FROM events
              ORDER BY issued_at_unixms DESC, rowid DESC`
        var rows *sql.Rows
        if limit > 0 {
                rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
        } else {
                rows, err = db.QueryContext(ctx, q)
        }
        if err != nil {
                return nil, err
        }
        defer rows.Close()

        out := []model.Event{}
        for rows.Next() {
                var id, actor, typ, entityID, payloadJSON string
                var tsMs int64
                if err := rows.Scan(&id, &tsMs, &actor, &typ, &entityID, &payloadJSON); err != nil {
                        return nil, err
                }
                var payload any
                _ = json.Unmarshal([]byte(payloadJSON), &payload)
                out = append(out, model.Event{
                        ID:       id,
                        TS:       time.UnixMilli(tsMs).UTC(),
                        Actor:    actor,
                        Type:     typ,
                        EntityID: entityID,
                        Payload:  payload,
                })
        }
        if err := rows.Err(); err != nil {
                return nil, err
        }
        for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
                out[i], out[j] = out[j], out[i]
        }
        return out, nil
}
