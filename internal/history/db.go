// internal/history/db.go
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/courseloom/courseloom/internal/engine"
)

// Record is one persisted trigger execution.
type Record struct {
	ID          string
	TriggerID   string
	EventType   string
	StartedAt   time.Time
	DurationMs  int64
	Success     bool
	Error       string
	ActionsJSON string
}

// DB mirrors engine execution records into SQLite so runs can be
// inspected after the fact. The engine's in-memory tracker remains the
// authoritative bounded history; this sink is optional.
type DB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
    id TEXT PRIMARY KEY,
    trigger_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL,
    success BOOLEAN NOT NULL,
    error TEXT,
    actions TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_executions_trigger ON executions(trigger_id);
CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);
`

// Open opens or creates a history database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores one execution. Implements engine.HistorySink.
func (d *DB) Record(exec engine.Execution) error {
	actions, err := json.Marshal(exec.Actions)
	if err != nil {
		actions = []byte("[]")
	}

	_, err = d.db.Exec(`
		INSERT INTO executions
		(id, trigger_id, event_type, started_at, duration_ms, success, error, actions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID, exec.TriggerID, string(exec.EventType), exec.Timestamp,
		exec.Duration.Milliseconds(), exec.Success, exec.Error, string(actions),
	)
	if err != nil {
		return fmt.Errorf("recording execution: %w", err)
	}
	return nil
}

// GetHistory retrieves executions, newest first, optionally filtered by
// trigger id.
func (d *DB) GetHistory(triggerID string, limit int) ([]Record, error) {
	query := "SELECT id, trigger_id, event_type, started_at, duration_ms, success, error, actions FROM executions WHERE 1=1"
	var args []any

	if triggerID != "" {
		query += " AND trigger_id = ?"
		args = append(args, triggerID)
	}

	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var errStr, actions sql.NullString
		if err := rows.Scan(&r.ID, &r.TriggerID, &r.EventType, &r.StartedAt,
			&r.DurationMs, &r.Success, &errStr, &actions); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Error = errStr.String
		r.ActionsJSON = actions.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Cleanup removes executions older than the given number of days.
func (d *DB) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result, err := d.db.Exec(
		"DELETE FROM executions WHERE started_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cleaning up history: %w", err)
	}
	return result.RowsAffected()
}
