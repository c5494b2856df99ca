package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore delegates sequence assignment to the database: the BIGSERIAL
// column hands out the per-ledger sequence inside the insert itself, so any
// number of concurrent writers get distinct event ids without coordinating.
// Rows are insert-only; there is no UPDATE or DELETE path.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS disruption_events (
	seq        BIGSERIAL PRIMARY KEY,
	event_id   TEXT UNIQUE NOT NULL,
	date       TEXT NOT NULL,
	type       TEXT NOT NULL,
	region     TEXT NOT NULL,
	severity   TEXT NOT NULL,
	payload    JSONB NOT NULL,
	logged_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres ledger: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres ledger: %w", err)
	}
	if _, err := db.Exec(pgSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) All(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM disruption_events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("corrupt event payload: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Append stores the event in a single transaction: the BIGSERIAL seq is
// claimed by the insert, the event id is derived from it, and the payload
// is updated to carry the final id before commit.
func (s *PostgresStore) Append(ctx context.Context, ev Event) (Event, error) {
	now := s.now()
	if ev.Date == "" {
		ev.Date = now.Format("2006-01-02")
	}
	if ev.LoggedAt.IsZero() {
		ev.LoggedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, fmt.Errorf("failed to begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	payload, err := json.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event: %w", err)
	}

	var seq int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO disruption_events (event_id, date, type, region, severity, payload, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`,
		placeholderID(ev, now), ev.Date, ev.Type, ev.Region, ev.Severity, payload, ev.LoggedAt,
	).Scan(&seq)
	if err != nil {
		return Event{}, fmt.Errorf("failed to append event: %w", err)
	}

	if ev.EventID == "" {
		ev.EventID = FormatEventID(now, int(seq))
		payload, err = json.Marshal(ev)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode event: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE disruption_events SET event_id = $1, payload = $2 WHERE seq = $3`,
			ev.EventID, payload, seq); err != nil {
			return Event{}, fmt.Errorf("failed to finalize event id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("failed to commit event: %w", err)
	}
	return ev, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// placeholderID keeps the UNIQUE constraint satisfied until the real id is
// derived from the claimed sequence within the same transaction.
func placeholderID(ev Event, now time.Time) string {
	if ev.EventID != "" {
		return ev.EventID
	}
	return fmt.Sprintf("EVT-PENDING-%d", now.UnixNano())
}
