package scenario

import (
	"fmt"
	"sort"

	"disruption-response/internal/facts"
	"disruption-response/pkg/errors"
	"disruption-response/pkg/scoring"
)

// RankedResult is a simulated scenario re-scored under an appetite profile.
type RankedResult struct {
	Result
	AdjustedScore float64 `json:"adjusted_score"`
}

// Ranking is the total order over a scenario batch.
type Ranking struct {
	RiskAppetite      string         `json:"risk_appetite"`
	RankedScenarios   []RankedResult `json:"ranked_scenarios"`
	TopRecommendation string         `json:"top_recommendation"`
	Reasoning         string         `json:"reasoning"`
}

// Ranker orders simulated scenarios under a named risk-appetite profile.
type Ranker struct {
	facts *facts.Store
}

func NewRanker(store *facts.Store) *Ranker {
	return &Ranker{facts: store}
}

// Rank recomputes an adjusted score per scenario from its own financials
// and timing under the profile's weights, then sorts descending. Ties
// break on scenario type lexical order so the order is reproducible
// across runs. Ranking an already-ranked batch with the same profile
// reproduces the same order.
func (r *Ranker) Rank(results []Result, riskAppetite string) (*Ranking, error) {
	if len(results) == 0 {
		return nil, errors.NewInvalidInputError("scenario batch is empty; simulate scenarios before ranking")
	}
	for i, res := range results {
		if res.ScenarioType == "" {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("scenario at index %d has no scenario_type", i))
		}
	}

	w := r.facts.RiskWeights(riskAppetite)

	ranked := make([]RankedResult, 0, len(results))
	for _, res := range results {
		serviceScore := r.facts.RankServiceScore(res.ServiceLevelProtection)
		costScore := scoring.CostScore(res.Financials.UnitCostPremiumPct)
		speedScore := scoring.SpeedScore(res.Timing.ImplementationDays, rankerSpeedPenalty)
		adjusted := scoring.Blend(serviceScore, costScore, speedScore, w)
		ranked = append(ranked, RankedResult{
			Result:        res,
			AdjustedScore: scoring.Round1(adjusted),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AdjustedScore != ranked[j].AdjustedScore {
			return ranked[i].AdjustedScore > ranked[j].AdjustedScore
		}
		return ranked[i].ScenarioType < ranked[j].ScenarioType
	})

	top := ranked[0]
	return &Ranking{
		RiskAppetite:      riskAppetite,
		RankedScenarios:   ranked,
		TopRecommendation: top.ScenarioName,
		Reasoning: fmt.Sprintf(
			"Based on '%s' risk appetite, service level protection is weighted at %.0f%%. '%s' scores highest at %.1f/100.",
			riskAppetite, w.Service*100, top.ScenarioName, top.AdjustedScore),
	}, nil
}
