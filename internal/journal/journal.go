// Package journal records every event the coordinator drains to SQLite, so
// a finished run can be inspected after the fact. This is an audit trail,
// not state persistence: a simulation never resumes from its journal.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/voyager/internal/sim"
)

//go:embed schema.sql
var schemaSQL string

// Journal wraps a SQLite database holding drained-event rows.
// Uses WAL mode so the read side can query while a run is writing.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at the given path and applies
// the schema. Idempotent.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to journal: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY on the coordinator's write path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RunRecorder writes one simulation run's events under a fresh run id.
// It implements sim.Recorder and is only ever called from the coordinator
// goroutine.
type RunRecorder struct {
	journal *Journal
	runID   string
}

// NewRun starts a recorder with a time-sortable UUIDv7 run id.
func (j *Journal) NewRun() *RunRecorder {
	return &RunRecorder{
		journal: j,
		runID:   uuid.Must(uuid.NewV7()).String(),
	}
}

// RunID returns the recorder's run id.
func (r *RunRecorder) RunID() string { return r.runID }

// Record appends one drained event.
func (r *RunRecorder) Record(ev sim.DrainedEvent) error {
	_, err := r.journal.db.Exec(
		`INSERT INTO events (run_id, seq, unit, resource, status, priority, magnitude, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, ev.Seq, ev.Unit, ev.Resource,
		ev.Status.String(), ev.Priority.String(), ev.Magnitude,
		ev.At.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording event seq %d: %w", ev.Seq, err)
	}
	return nil
}

// Entry is one journaled event as read back from the database.
type Entry struct {
	RunID     string
	Seq       int64
	Unit      string
	Resource  string
	Status    string
	Priority  string
	Magnitude int
	At        time.Time
}

// Events returns journaled events ordered by run and sequence. An empty
// runID selects every run.
func (j *Journal) Events(runID string) ([]Entry, error) {
	query := `SELECT run_id, seq, unit, resource, status, priority, magnitude, at
	          FROM events`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY run_id, seq`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Unit, &e.Resource, &e.Status, &e.Priority, &e.Magnitude, &at); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return entries, nil
}

// Runs returns the distinct run ids present in the journal, oldest first.
// UUIDv7 run ids sort by creation time.
func (j *Journal) Runs() ([]string, error) {
	rows, err := j.db.Query(`SELECT DISTINCT run_id FROM events ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
