package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLSink persists audit events to SQLite or Postgres. It is a sink for the
// closed Event field set only; there is no column anything else could land
// in.
type SQLSink struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteSink opens (or creates) a SQLite-backed sink at dsn.
func NewSQLiteSink(dsn string) (*SQLSink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "voicegate-audit.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite audit sink: %w", err)
	}
	s := &SQLSink{db: db, dialect: "sqlite"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresSink opens a Postgres-backed sink at dsn.
func NewPostgresSink(dsn string) (*SQLSink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit sink: %w", err)
	}
	s := &SQLSink{db: db, dialect: "postgres"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLSink) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s audit sink: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY,
	event_type TEXT NOT NULL,
	task TEXT,
	step TEXT,
	action TEXT,
	error_code TEXT,
	created_at TIMESTAMP NOT NULL
);`
	if s.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS audit_events (
	id BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	task TEXT,
	step TEXT,
	action TEXT,
	error_code TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize audit schema: %w", err)
	}
	return nil
}

// Write inserts one event row.
func (s *SQLSink) Write(ctx context.Context, ev Event) error {
	query := `INSERT INTO audit_events(event_type, task, step, action, error_code, created_at)
	VALUES(?, ?, ?, ?, ?, ?)`
	if s.dialect == "postgres" {
		query = `INSERT INTO audit_events(event_type, task, step, action, error_code, created_at)
		VALUES($1, $2, $3, $4, $5, $6)`
	}

	_, err := s.db.ExecContext(ctx, query,
		string(ev.Type),
		ev.Task,
		ev.Step,
		ev.Action,
		ev.ErrorCode,
		ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
