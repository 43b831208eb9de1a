// Package persistence keeps a SQLite journal of planet runs: every logged
// event and every production decision. The journal is write-mostly and is
// never read back into a running planet.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/planet-ai/internal/eventlog"
)

const schemaVersion = "1"

// DB wraps a SQLite connection for the run journal.
type DB struct {
	conn *sqlx.DB

	mu    sync.Mutex
	runID string
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		planet_id INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		outcome TEXT,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		planet_id INTEGER NOT NULL,
		at TEXT NOT NULL,
		type TEXT NOT NULL,
		channel TEXT NOT NULL,
		participant TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		at TEXT NOT NULL,
		kind TEXT NOT NULL,
		resource TEXT NOT NULL,
		p_sunray REAL,
		granted INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", schemaVersion)
}

// BeginRun opens a new run and tags every later event with it.
func (db *DB) BeginRun(planetID uint32, config any) (string, error) {
	cfgJSON, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode run config: %w", err)
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, planet_id, started_at, config_json) VALUES (?, ?, ?, ?)",
		id, planetID, formatTime(time.Now()), string(cfgJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	db.mu.Lock()
	db.runID = id
	db.mu.Unlock()

	slog.Info("journal run started", "run", id, "planet", planetID)
	return id, nil
}

// EndRun records how the current run ended.
func (db *DB) EndRun(outcome string) error {
	run := db.currentRun()
	if run == "" {
		return nil
	}
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, outcome = ? WHERE id = ?",
		formatTime(time.Now()), outcome, run,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run, err)
	}
	return nil
}

func (db *DB) currentRun() string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.runID
}

// Write appends one event. Production decisions are also written to the
// decisions table.
func (db *DB) Write(e eventlog.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	participant := ""
	if e.Participant != nil {
		participant = e.Participant.Role + ":" + strconv.FormatUint(uint64(e.Participant.ID), 10)
	}
	run := db.currentRun()
	at := formatTime(e.At)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO events (run_id, planet_id, at, type, channel, participant, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run, e.PlanetID, at, e.Type.String(), e.Channel.String(), participant, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if kind, ok := decisionKind(e); ok {
		var pSunray any
		if v, err := strconv.ParseFloat(e.Payload["p_sunray"], 64); err == nil {
			pSunray = v
		}
		granted := 0
		if e.Payload["decision"] == "true" {
			granted = 1
		}
		_, err = tx.Exec(
			`INSERT INTO decisions (run_id, at, kind, resource, p_sunray, granted, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run, at, kind, e.Payload["resource"], pSunray, granted, e.Payload["reason"],
		)
		if err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}
	}

	return tx.Commit()
}

// decisionKind recognizes the payload of a production verdict.
func decisionKind(e eventlog.Event) (string, bool) {
	if e.Type != eventlog.InternalPlanetAction {
		return "", false
	}
	action := e.Payload["action"]
	if !strings.HasPrefix(action, "generate_") || !strings.HasSuffix(action, "_resource") {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(action, "generate_"), "_resource"), true
}

// SaveMeta stores a key-value pair in journal metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO journal_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM journal_meta WHERE key = ?", key)
	return value, err
}

// EventRecord is a journaled event.
type EventRecord struct {
	ID          int64            `db:"id" json:"id"`
	RunID       string           `db:"run_id" json:"run_id"`
	PlanetID    uint32           `db:"planet_id" json:"planet_id"`
	At          string           `db:"at" json:"at"`
	Type        string           `db:"type" json:"type"`
	Channel     string           `db:"channel" json:"channel"`
	Participant string           `db:"participant" json:"participant,omitempty"`
	PayloadJSON string           `db:"payload_json" json:"-"`
	Payload     eventlog.Payload `db:"-" json:"payload"`
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := db.conn.Select(&events,
		`SELECT id, run_id, planet_id, at, type, channel, participant, payload_json
		FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if err := json.Unmarshal([]byte(events[i].PayloadJSON), &events[i].Payload); err != nil {
			return nil, fmt.Errorf("decode event %d payload: %w", events[i].ID, err)
		}
	}
	return events, nil
}

// DecisionStats summarizes the verdicts of one kind within a run.
type DecisionStats struct {
	Kind       string  `db:"kind" json:"kind"`
	Total      int     `db:"total" json:"total"`
	Granted    int     `db:"granted" json:"granted"`
	AvgPSunray float64 `db:"avg_p_sunray" json:"avg_p_sunray"` // 0 when no estimate was logged
}

// DecisionStats aggregates the decisions of runID by kind.
func (db *DB) DecisionStats(runID string) ([]DecisionStats, error) {
	var stats []DecisionStats
	err := db.conn.Select(&stats,
		`SELECT kind, COUNT(*) AS total, COALESCE(SUM(granted), 0) AS granted,
			COALESCE(AVG(p_sunray), 0) AS avg_p_sunray
		FROM decisions WHERE run_id = ? GROUP BY kind ORDER BY kind`,
		runID,
	)
	return stats, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
