// Package journal keeps an in-process record of ingestions, option fetches
// and route requests with their outcomes. It lives in SQLite, in memory by
// default, and is gone when the process exits.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed migrations/*.sql
var migrations embed.FS

// Kind is what an entry is about.
type Kind string

const (
	KindIngest  Kind = "ingest"
	KindOptions Kind = "options"
	KindRoute   Kind = "route"
)

// Outcome is how it ended.
type Outcome string

const (
	OutcomeIssued    Outcome = "issued"
	OutcomeApplied   Outcome = "applied"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRejected  Outcome = "rejected"
)

// Entry is one journal line.
type Entry struct {
	ID         string        `json:"id" yaml:"id"`
	Session    string        `json:"session" yaml:"session"`
	Kind       Kind          `json:"kind" yaml:"kind"`
	Outcome    Outcome       `json:"outcome" yaml:"outcome"`
	Subject    string        `json:"subject" yaml:"subject"`
	Generation uint64        `json:"generation,omitempty" yaml:"generation,omitempty"`
	Detail     string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Duration   time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	At         time.Time     `json:"at" yaml:"at"`
}

// Journal is safe for concurrent use.
type Journal struct {
	db *sql.DB
}

// Open opens the journal database at path and migrates it.
// Use ":memory:" for a journal that lives only as long as the process.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}

	j := New(db)
	if err := j.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// New wraps an open database without migrating it.
func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Migrate runs all pending migrations.
func (j *Journal) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(j.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends e, assigning an ID and timestamp when missing.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, session_id, kind, outcome, subject, generation, detail, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Session, string(e.Kind), string(e.Outcome), e.Subject, int64(e.Generation), e.Detail,
		e.Duration.Milliseconds(), e.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for session, newest first.
func (j *Journal) Recent(ctx context.Context, session string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, kind, outcome, subject, generation, detail, duration_ms, recorded_at
		FROM journal_entries
		WHERE session_id = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`, session, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			kind, out  string
			generation int64
			durationMS int64
			at         int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &kind, &out, &e.Subject, &generation, &e.Detail, &durationMS, &at); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.Outcome = Outcome(out)
		e.Generation = uint64(generation)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// Count is the number of entries with one kind and outcome.
type Count struct {
	Kind    Kind    `json:"kind" yaml:"kind"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	N       int     `json:"count" yaml:"count"`
}

// Summary counts a session's entries by kind and outcome.
func (j *Journal) Summary(ctx context.Context, session string) ([]Count, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, outcome, COUNT(*)
		FROM journal_entries
		WHERE session_id = ?
		GROUP BY kind, outcome
		ORDER BY kind, outcome
	`, session)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize journal: %w", err)
	}
	defer rows.Close()

	var counts []Count
	for rows.Next() {
		var c Count
		var kind, out string
		if err := rows.Scan(&kind, &out, &c.N); err != nil {
			return nil, fmt.Errorf("failed to scan journal summary: %w", err)
		}
		c.Kind, c.Outcome = Kind(kind), Outcome(out)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Prune deletes a session's entries, used when a UI session expires.
func (j *Journal) Prune(ctx context.Context, session string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE session_id = ?`, session); err != nil {
		return fmt.Errorf("failed to prune journal: %w", err)
	}
	return nil
}
