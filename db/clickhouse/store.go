// Package clickhouse provides a columnar analytics mirror of the
// disruption ledger. The mirror is insert-only, which preserves the
// ledger's append-only property, and exists so pattern mining stays cheap
// once the history outgrows full-scan JSON. The primary ledger remains
// the source of truth; mirroring is best-effort.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"disruption-response/internal/ledger"
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "resilience",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store mirrors ledger events into ClickHouse
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore creates a new ClickHouse event mirror
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates the events table. MergeTree with no mutation paths
// keeps the mirror insert-only.
func (s *Store) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS disruption_events (
			id                  UUID,
			event_id            String,
			date                Date,
			type                LowCardinality(String),
			region              LowCardinality(String),
			severity            LowCardinality(String),
			affected_suppliers  Array(String),
			mitigation_action   String,
			mitigation_cost_usd Decimal(18, 2),
			actual_loss_usd     Decimal(18, 2),
			outcome             LowCardinality(String),
			payload             String,
			logged_at           DateTime
		) ENGINE = MergeTree()
		ORDER BY (date, event_id)
	`
	return s.conn.Exec(ctx, query)
}

// =============================================================================
// WRITE PATH
// =============================================================================

// AppendEvents bulk-inserts ledger events using a prepared batch
func (s *Store) AppendEvents(ctx context.Context, events []ledger.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO disruption_events (
			id, event_id, date, type, region, severity, affected_suppliers,
			mitigation_action, mitigation_cost_usd, actual_loss_usd, outcome,
			payload, logged_at
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, ev := range events {
		date, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			date = ev.LoggedAt
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", ev.EventID, err)
		}
		actualLoss := decimal.Zero
		if ev.Impact.ActualRevenueLostUSD != nil {
			actualLoss = decimal.NewFromFloat(*ev.Impact.ActualRevenueLostUSD)
		}
		if err := batch.Append(
			uuid.New(),
			ev.EventID,
			date,
			ev.Type,
			ev.Region,
			ev.Severity,
			ev.AffectedSuppliers,
			ev.MitigationTaken.Action,
			decimal.NewFromFloat(ev.MitigationTaken.CostUSD),
			actualLoss,
			ev.MitigationTaken.Outcome,
			string(payload),
			ev.LoggedAt,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// =============================================================================
// PATTERN QUERIES
// =============================================================================

// DimensionTally is one (value, count) pair from a frequency query
type DimensionTally struct {
	Value string
	Count uint64
}

// CountByType tallies events per disruption type
func (s *Store) CountByType(ctx context.Context) ([]DimensionTally, error) {
	return s.tally(ctx, `
		SELECT type AS value, count() AS cnt
		FROM disruption_events
		GROUP BY type
		ORDER BY cnt DESC, value
	`)
}

// CountByRegion tallies events per region
func (s *Store) CountByRegion(ctx context.Context) ([]DimensionTally, error) {
	return s.tally(ctx, `
		SELECT region AS value, count() AS cnt
		FROM disruption_events
		GROUP BY region
		ORDER BY cnt DESC, value
	`)
}

// CountBySupplier tallies events per affected supplier
func (s *Store) CountBySupplier(ctx context.Context) ([]DimensionTally, error) {
	return s.tally(ctx, `
		SELECT supplier AS value, count() AS cnt
		FROM disruption_events
		ARRAY JOIN affected_suppliers AS supplier
		GROUP BY supplier
		ORDER BY cnt DESC, value
	`)
}

func (s *Store) tally(ctx context.Context, query string) ([]DimensionTally, error) {
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run tally query: %w", err)
	}
	defer rows.Close()

	var tallies []DimensionTally
	for rows.Next() {
		var t DimensionTally
		if err := rows.Scan(&t.Value, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, nil
}

// HistoricalTotals sums actual losses and mitigation costs across the
// full mirror
func (s *Store) HistoricalTotals(ctx context.Context) (losses, costs decimal.Decimal, err error) {
	query := `
		SELECT sum(actual_loss_usd), sum(mitigation_cost_usd)
		FROM disruption_events
	`
	row := s.conn.QueryRow(ctx, query)
	if err := row.Scan(&losses, &costs); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum totals: %w", err)
	}
	return losses, costs, nil
}

// EventCount returns the number of mirrored events
func (s *Store) EventCount(ctx context.Context) (int, error) {
	row := s.conn.QueryRow(ctx, `SELECT count() FROM disruption_events`)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return int(count), nil
}
