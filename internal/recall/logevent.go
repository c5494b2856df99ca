package recall

import (
	"context"
	"fmt"

	"disruption-response/internal/ledger"
	"disruption-response/internal/vector"
	"disruption-response/pkg/errors"
)

// LogRequest is the driver's description of a finished disruption cycle.
type LogRequest struct {
	EventType         string   `json:"event_type"`
	Region            string   `json:"region"`
	Severity          string   `json:"severity"`
	AffectedSuppliers []string `json:"affected_suppliers"`
	Description       string   `json:"description"`
	MitigationAction  string   `json:"mitigation_action"`
	EstimatedCostUSD  float64  `json:"estimated_cost_usd"`
	Outcome           string   `json:"outcome"`
}

// Storage status values reported back to the driver.
const (
	StorageWritten        = "written_to_ledger"
	StorageWrittenIndexed = "written_to_ledger_and_indexed"
)

// LogResult reports what happened to the event. The event is always
// present, even when durable storage failed, so the driver can retry.
type LogResult struct {
	EventID       string              `json:"event_id"`
	Event         ledger.Event        `json:"logged_event"`
	StorageStatus string              `json:"storage_status"`
	Warning       *errors.EngineError `json:"warning,omitempty"`
}

// LogEvent appends a new disruption event to the ledger and, when an index
// is configured, also embeds and upserts it for future recall. The two
// writes are independent best-effort operations: an index failure never
// fails the call, and a ledger failure is reported but does not roll back
// the index write.
func (e *Engine) LogEvent(ctx context.Context, req LogRequest) (*LogResult, error) {
	if req.EventType == "" {
		return nil, errors.NewInvalidInputError("event type is required")
	}
	outcome := req.Outcome
	if outcome == "" {
		outcome = ledger.OutcomePending
	}

	ev := ledger.Event{
		Type:              req.EventType,
		Region:            req.Region,
		Severity:          req.Severity,
		AffectedSuppliers: req.AffectedSuppliers,
		Description:       req.Description,
		MitigationTaken: ledger.Mitigation{
			Action:  req.MitigationAction,
			CostUSD: req.EstimatedCostUSD,
			Outcome: outcome,
		},
		LessonsLearned: "To be determined based on outcome.",
		LoggedBy:       e.loggedBy,
	}

	result := &LogResult{StorageStatus: StorageWritten}

	stored, appendErr := e.store.Append(ctx, ev)
	if appendErr != nil {
		// Id assignment may not have happened; mint one locally so the
		// driver still gets an addressable event to retry with.
		if stored.EventID == "" {
			stored.EventID = ledger.FormatEventID(e.now(), 1)
		}
		result.Warning = errors.NewPersistenceError(appendErr)
		result.StorageStatus = fmt.Sprintf("write_failed: %v", appendErr)
	}
	result.EventID = stored.EventID
	result.Event = stored

	if e.index.Available() && e.embedder.Available() {
		if e.upsertToIndex(stored) && appendErr == nil {
			result.StorageStatus = StorageWrittenIndexed
		}
	}

	return result, nil
}

func (e *Engine) upsertToIndex(ev ledger.Event) bool {
	text := ev.SearchText()
	if text == "" {
		return false
	}
	vec, err := e.embedder.Embed(text)
	if err != nil {
		return false
	}
	if err := e.index.EnsureCollection(); err != nil {
		return false
	}
	return e.index.Upsert([]vector.Point{{ID: ev.EventID, Vector: vec, Payload: ev}}) == nil
}
