package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"disruption-response/pkg/errors"
)

// patternThreshold is the tally at which a dimension becomes a flagged
// recurring pattern.
const patternThreshold = 2

// Pattern is one flagged recurring-risk dimension.
type Pattern struct {
	Pattern        string `json:"pattern"`
	Detail         string `json:"detail"`
	Recommendation string `json:"recommendation"`
}

// PatternsResult is the full-ledger frequency analysis.
type PatternsResult struct {
	TotalEventsAnalyzed    int            `json:"total_events_analyzed"`
	TotalLossesUSD         float64        `json:"total_historical_losses_usd"`
	TotalMitigationCostUSD float64        `json:"total_mitigation_costs_usd"`
	ByType                 map[string]int `json:"disruption_by_type"`
	ByRegion               map[string]int `json:"disruption_by_region"`
	BySupplier             map[string]int `json:"most_affected_suppliers"`
	Patterns               []Pattern      `json:"recurring_patterns"`
	Summary                string         `json:"summary"`
}

// RecurringPatterns scans the full ledger and tallies frequency by type,
// affected supplier, and region, flagging any tally at or above the
// threshold. O(n) in ledger size on every call; there is no incremental
// index. An empty ledger yields zero tallies and no patterns, never an
// error.
func (e *Engine) RecurringPatterns(ctx context.Context) (*PatternsResult, error) {
	history, err := e.store.All(ctx)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	result := &PatternsResult{
		TotalEventsAnalyzed: len(history),
		ByType:              map[string]int{},
		ByRegion:            map[string]int{},
		BySupplier:          map[string]int{},
		Patterns:            []Pattern{},
	}

	// Dollar sums go through decimal; float accumulation drifts over a
	// long ledger.
	totalLoss := decimal.Zero
	totalCost := decimal.Zero
	for _, ev := range history {
		t := ev.Type
		if t == "" {
			t = "Unknown"
		}
		result.ByType[t]++

		region := ev.Region
		if region == "" {
			region = "Unknown"
		}
		result.ByRegion[region]++

		for _, sup := range ev.AffectedSuppliers {
			result.BySupplier[sup]++
		}

		if ev.Impact.ActualRevenueLostUSD != nil {
			totalLoss = totalLoss.Add(decimal.NewFromFloat(*ev.Impact.ActualRevenueLostUSD))
		}
		totalCost = totalCost.Add(decimal.NewFromFloat(ev.MitigationTaken.CostUSD))
	}
	result.TotalLossesUSD = totalLoss.InexactFloat64()
	result.TotalMitigationCostUSD = totalCost.InexactFloat64()

	if sup, n := topTally(result.BySupplier); n >= patternThreshold {
		result.Patterns = append(result.Patterns, Pattern{
			Pattern:        "Recurring Supplier Risk",
			Detail:         fmt.Sprintf("%s has been affected in %d disruptions", sup, n),
			Recommendation: fmt.Sprintf("Prioritize backup qualification for %s", sup),
		})
	}
	if typ, n := topTally(result.ByType); n >= patternThreshold {
		result.Patterns = append(result.Patterns, Pattern{
			Pattern:        "Recurring Disruption Type",
			Detail:         fmt.Sprintf("'%s' has occurred %d times", typ, n),
			Recommendation: fmt.Sprintf("Develop standing playbook for %s events", typ),
		})
	}
	if region, n := topTally(result.ByRegion); n >= patternThreshold {
		result.Patterns = append(result.Patterns, Pattern{
			Pattern:        "High-Risk Region",
			Detail:         fmt.Sprintf("%s appears in %d disruptions", region, n),
			Recommendation: fmt.Sprintf("Reduce single-region dependency for %s", region),
		})
	}

	result.Summary = fmt.Sprintf("Analyzed %d historical events. Total losses: $%.0f. %d recurring pattern(s) identified.",
		len(history), result.TotalLossesUSD, len(result.Patterns))
	return result, nil
}

// topTally returns the highest-count key. Equal counts break on lexical
// order so repeated calls over the same ledger agree.
func topTally(tallies map[string]int) (string, int) {
	keys := make([]string, 0, len(tallies))
	for k := range tallies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var topKey string
	var topN int
	for _, k := range keys {
		if tallies[k] > topN {
			topKey, topN = k, tallies[k]
		}
	}
	return topKey, topN
}
