package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Event is one appended journal entry. Events are never updated or
// deleted; the journal is a trail, not pipeline state.
type Event struct {
	ID        string    `db:"id"`
	RunID     string    `db:"run_id"`
	Name      string    `db:"name"`
	EmailID   string    `db:"email_id"`
	Subject   string    `db:"subject"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// Journal is an append-only SQLite trail of run events.
type Journal struct {
	db    *sqlx.DB
	runID string
}

// NewJournal opens (or creates) the journal database at dbPath and runs
// any pending schema migrations. All events recorded through the
// returned journal carry the given run ID.
func NewJournal(dbPath, runID string) (*Journal, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	j := &Journal{db: db, runID: runID}
	if err := j.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running journal migrations: %w", err)
	}

	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	name       TEXT NOT NULL,
	email_id   TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_events_run ON audit_events(run_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (j *Journal) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := j.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = j.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := j.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Record appends one event to the journal.
func (j *Journal) Record(ctx context.Context, name, emailID, subject, detail string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, run_id, name, email_id, subject, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), j.runID, name, emailID, subject, detail,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording audit event %q: %w", name, err)
	}

	return nil
}

// EventsByRun retrieves every event of a run in insertion order.
func (j *Journal) EventsByRun(ctx context.Context, runID string) ([]Event, error) {
	var events []Event
	err := j.db.SelectContext(ctx, &events,
		"SELECT * FROM audit_events WHERE run_id = ? ORDER BY created_at, id", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}

	return events, nil
}
