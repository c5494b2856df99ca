package recall

import (
	"context"
	"testing"

	"disruption-response/internal/ledger"
)

func floatPtr(v float64) *float64 { return &v }

func TestRecurringPatterns(t *testing.T) {
	engine := seededEngine(t,
		ledger.Event{
			Type:              "Port Strike",
			Region:            "Taiwan",
			AffectedSuppliers: []string{"S-TAICHIP"},
			Impact:            ledger.Impact{ActualRevenueLostUSD: floatPtr(400000)},
			MitigationTaken:   ledger.Mitigation{CostUSD: 120000},
		},
		ledger.Event{
			Type:              "Port Strike",
			Region:            "Taiwan",
			AffectedSuppliers: []string{"S-TAICHIP", "S-PCBHOUSE"},
			Impact:            ledger.Impact{ActualRevenueLostUSD: floatPtr(150000)},
			MitigationTaken:   ledger.Mitigation{CostUSD: 65000},
		},
		ledger.Event{
			Type:            "Factory Fire",
			Region:          "Osaka",
			MitigationTaken: ledger.Mitigation{CostUSD: 250000},
		},
	)

	result, err := engine.RecurringPatterns(context.Background())
	if err != nil {
		t.Fatalf("RecurringPatterns failed: %v", err)
	}

	if result.TotalEventsAnalyzed != 3 {
		t.Errorf("events analyzed = %d, want 3", result.TotalEventsAnalyzed)
	}
	if result.ByType["Port Strike"] != 2 {
		t.Errorf("Port Strike tally = %d, want 2", result.ByType["Port Strike"])
	}
	if result.ByRegion["Taiwan"] != 2 {
		t.Errorf("Taiwan tally = %d, want 2", result.ByRegion["Taiwan"])
	}
	if result.BySupplier["S-TAICHIP"] != 2 {
		t.Errorf("S-TAICHIP tally = %d, want 2", result.BySupplier["S-TAICHIP"])
	}
	if result.TotalLossesUSD != 550000 {
		t.Errorf("total losses = %v, want 550000", result.TotalLossesUSD)
	}
	if result.TotalMitigationCostUSD != 435000 {
		t.Errorf("total mitigation cost = %v, want 435000", result.TotalMitigationCostUSD)
	}

	// Supplier, type, and region all cross the recurrence threshold.
	if len(result.Patterns) != 3 {
		t.Fatalf("flagged %d patterns, want 3: %+v", len(result.Patterns), result.Patterns)
	}
	wantPatterns := []string{"Recurring Supplier Risk", "Recurring Disruption Type", "High-Risk Region"}
	for i, want := range wantPatterns {
		if result.Patterns[i].Pattern != want {
			t.Errorf("pattern %d = %s, want %s", i, result.Patterns[i].Pattern, want)
		}
	}
}

func TestRecurringPatterns_EmptyLedger(t *testing.T) {
	engine := seededEngine(t)

	result, err := engine.RecurringPatterns(context.Background())
	if err != nil {
		t.Fatalf("RecurringPatterns failed: %v", err)
	}
	if result.TotalEventsAnalyzed != 0 {
		t.Errorf("events analyzed = %d, want 0", result.TotalEventsAnalyzed)
	}
	if len(result.Patterns) != 0 {
		t.Errorf("flagged %d patterns on empty ledger", len(result.Patterns))
	}
	if result.TotalLossesUSD != 0 {
		t.Errorf("total losses = %v, want 0", result.TotalLossesUSD)
	}
}

func TestRecurringPatterns_BelowThreshold(t *testing.T) {
	engine := seededEngine(t,
		ledger.Event{Type: "Port Strike", Region: "Taiwan", AffectedSuppliers: []string{"S-TAICHIP"}},
		ledger.Event{Type: "Typhoon", Region: "Osaka", AffectedSuppliers: []string{"S-KANSAI"}},
	)

	result, err := engine.RecurringPatterns(context.Background())
	if err != nil {
		t.Fatalf("RecurringPatterns failed: %v", err)
	}
	if len(result.Patterns) != 0 {
		t.Errorf("flagged %d patterns with singleton tallies: %+v", len(result.Patterns), result.Patterns)
	}
}

func TestTopTally(t *testing.T) {
	top, n := topTally(map[string]int{"Taiwan": 2, "Osaka": 5, "Rotterdam": 1})
	if top != "Osaka" || n != 5 {
		t.Errorf("topTally = (%s, %d), want (Osaka, 5)", top, n)
	}

	// Equal counts break on lexical order for determinism.
	top, n = topTally(map[string]int{"zeta": 2, "alpha": 2})
	if top != "alpha" || n != 2 {
		t.Errorf("topTally tie = (%s, %d), want (alpha, 2)", top, n)
	}

	if top, n := topTally(nil); top != "" || n != 0 {
		t.Errorf("topTally(nil) = (%s, %d)", top, n)
	}
}
