package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/barterforge/engine-core/internal/engine"
)

// SQLiteSink is a Sink backed by a single append-only table. Each audit's
// Kind is flattened to a (kind, detail) pair: detail is a JSON blob of
// whatever fields that Kind carries, queryable with SQLite's json_extract
// for ad-hoc inspection without a bespoke schema per audit variant.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if absent) a SQLite database at path and
// ensures its schema exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return sink, nil
}

func (s *SQLiteSink) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audit_log (
		sequence INTEGER PRIMARY KEY,
		time     DATETIME NOT NULL,
		kind     TEXT NOT NULL,
		detail   TEXT NOT NULL
	)`)
	return err
}

// Write inserts event. Sequences are primary keys, so re-delivering the
// same sequence after a crash is an idempotent no-op rather than a
// duplicate row.
func (s *SQLiteSink) Write(ctx context.Context, event engine.AuditEvent) error {
	kind, detail, err := describe(event.Kind)
	if err != nil {
		return fmt.Errorf("describe audit kind: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO audit_log (sequence, time, kind, detail) VALUES (?, ?, ?, ?)`,
		event.ID, event.Time, kind, detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// LastSequence returns the highest sequence id on record, for a consumer
// resuming after a restart to know how much of the audit stream it already
// has durably stored.
func (s *SQLiteSink) LastSequence(ctx context.Context) (uint64, bool, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(sequence) FROM audit_log`).Scan(&seq)
	if err != nil {
		return 0, false, fmt.Errorf("query last sequence: %w", err)
	}
	if !seq.Valid {
		return 0, false, nil
	}
	return uint64(seq.Int64), true, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// describe flattens an AuditKind to a (kind name, JSON detail) pair.
func describe(kind engine.AuditKind) (string, string, error) {
	name := fmt.Sprintf("%T", kind)
	detail, err := json.Marshal(kind)
	if err != nil {
		return "", "", err
	}
	return name, string(detail), nil
}
