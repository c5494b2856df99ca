// Package ledger persists the institutional memory of disruption events.
// The ledger is append-only: prior entries are never overwritten, only
// extended, and every store serializes id assignment with its append so
// concurrent writers cannot mint colliding ids.
package ledger

import (
	"context"
	"fmt"
	"time"
)

// Outcome values for a mitigation.
const (
	OutcomePending = "Pending"
	OutcomeSuccess = "Success"
	OutcomePartial = "Partial"
	OutcomeFailed  = "Failed"
)

// Impact is the financial damage block of an event, filled in as the
// outcome becomes known.
type Impact struct {
	DelayDays            *float64 `json:"delay_days"`
	RevenueAtRiskUSD     *float64 `json:"revenue_at_risk_usd"`
	ActualRevenueLostUSD *float64 `json:"actual_revenue_lost_usd"`
}

// Mitigation records the action taken against an event.
type Mitigation struct {
	Action  string  `json:"action"`
	CostUSD float64 `json:"cost_usd"`
	Outcome string  `json:"outcome"`
}

// Event is one historical disruption case.
type Event struct {
	EventID           string     `json:"event_id"`
	Date              string     `json:"date"`
	Type              string     `json:"type"`
	Region            string     `json:"region"`
	Severity          string     `json:"severity"`
	AffectedSuppliers []string   `json:"affected_suppliers"`
	Description       string     `json:"description"`
	Impact            Impact     `json:"impact"`
	MitigationTaken   Mitigation `json:"mitigation_taken"`
	LessonsLearned    string     `json:"lessons_learned"`
	LoggedBy          string     `json:"logged_by"`
	LoggedAt          time.Time  `json:"logged_at"`
}

// SearchText flattens the fields worth embedding for similarity search.
func (e Event) SearchText() string {
	text := e.Type
	for _, part := range []string{e.Region, e.Description, e.LessonsLearned, e.MitigationTaken.Action} {
		if part != "" {
			text += " " + part
		}
	}
	return text
}

// Store is an append-only ledger of disruption events.
//
// All returns the full history in append order; it never blocks appends
// for long and never mutates state. Append assigns the event id
// transactionally with the write and returns the stored event. Appends
// are non-idempotent; reads are idempotent.
type Store interface {
	All(ctx context.Context) ([]Event, error)
	Append(ctx context.Context, ev Event) (Event, error)
	Close() error
}

// FormatEventID builds the canonical event id from a date and a 1-based
// ledger sequence, e.g. EVT-2026-0831-004.
func FormatEventID(t time.Time, seq int) string {
	return fmt.Sprintf("EVT-%s-%03d", t.Format("2006-0102"), seq)
}
