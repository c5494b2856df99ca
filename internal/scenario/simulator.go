// Package scenario simulates mitigation options and ranks them under a
// caller-selected risk appetite. Simulation is policy-neutral (fixed
// weights); ranking applies policy. The two scoring contexts are kept as
// separate functions with separate service-level tables so they can
// diverge without coupling.
package scenario

import (
	"disruption-response/internal/facts"
	"disruption-response/pkg/errors"
	"disruption-response/pkg/scoring"
)

// Fixed simulator blend: service-level protection dominates raw cost.
// Callers wanting a different bias use the Ranker's appetite weights
// instead of mutating this score.
var simulatorWeights = scoring.Weights{Service: 0.5, Cost: 0.3, Speed: 0.2}

// Per-day speed penalties. The ranker deliberately uses a softer slope
// than the simulator; the two figures come from different rate tables.
const (
	simulatorSpeedPenalty = 4
	rankerSpeedPenalty    = 3
)

// Financials is the cost block of a simulated scenario.
type Financials struct {
	IncrementalCostUSD float64 `json:"incremental_cost_usd"`
	TotalCostUSD       float64 `json:"total_cost_usd"`
	UnitCostPremiumPct float64 `json:"unit_cost_premium_pct"`
}

// Timing is the schedule block of a simulated scenario.
type Timing struct {
	ImplementationDays int `json:"implementation_days"`
	LeadTimeChangeDays int `json:"lead_time_change_days"`
}

// Result carries enough structure for the Ranker to re-score under a
// different policy without resimulating.
type Result struct {
	ScenarioType           string     `json:"scenario_type"`
	ScenarioName           string     `json:"scenario_name"`
	Description            string     `json:"description"`
	ItemID                 string     `json:"affected_item_id"`
	DisruptionDays         int        `json:"disruption_days"`
	QuantityNeeded         int        `json:"quantity_needed"`
	Financials             Financials `json:"financials"`
	Timing                 Timing     `json:"timing"`
	ServiceLevelProtection string     `json:"service_level_protection"`
	Risks                  []string   `json:"risks"`
	CompositeScore         float64    `json:"composite_score"`
	CO2Impact              string     `json:"co2_impact"`
}

// Simulator evaluates one mitigation option against its configured
// definition.
type Simulator struct {
	facts *facts.Store
}

func NewSimulator(store *facts.Store) *Simulator {
	return &Simulator{facts: store}
}

// Simulate returns the cost/time/service trade-off of applying the given
// scenario to cover quantityNeeded units through a disruption of
// disruptionDays.
func (s *Simulator) Simulate(scenarioType, itemID string, disruptionDays, quantityNeeded int) (*Result, error) {
	def, ok := s.facts.Scenario(scenarioType)
	if !ok {
		return nil, errors.NewUnknownScenarioError(scenarioType)
	}
	if quantityNeeded < 0 {
		return nil, errors.NewInvalidInputError("quantity needed must be non-negative")
	}

	premiumUnitCost := def.BaseUnitCostUSD * (1 + def.UnitCostPremiumPct/100)
	variableCost := premiumUnitCost * float64(quantityNeeded)
	totalCost := variableCost + def.FixedCostUSD
	baselineCost := def.BaseUnitCostUSD * float64(quantityNeeded)
	incrementalCost := totalCost - baselineCost

	serviceScore := s.facts.ServiceScore(def.ServiceLevelProtection)
	costScore := scoring.CostScore(def.UnitCostPremiumPct)
	speedScore := scoring.SpeedScore(def.ImplementationDays, simulatorSpeedPenalty)
	composite := scoring.Blend(serviceScore, costScore, speedScore, simulatorWeights)

	return &Result{
		ScenarioType:   scenarioType,
		ScenarioName:   def.Name,
		Description:    def.Description,
		ItemID:         itemID,
		DisruptionDays: disruptionDays,
		QuantityNeeded: quantityNeeded,
		Financials: Financials{
			IncrementalCostUSD: scoring.Round2(incrementalCost),
			TotalCostUSD:       scoring.Round2(totalCost),
			UnitCostPremiumPct: def.UnitCostPremiumPct,
		},
		Timing: Timing{
			ImplementationDays: def.ImplementationDays,
			LeadTimeChangeDays: def.LeadTimeReductionDays,
		},
		ServiceLevelProtection: def.ServiceLevelProtection,
		Risks:                  def.Risks,
		CompositeScore:         scoring.Round1(composite),
		CO2Impact:              def.CO2Impact,
	}, nil
}
