package scenario

import (
	"testing"

	"disruption-response/pkg/errors"
)

func simulateAll(t *testing.T, sim *Simulator, types ...string) []Result {
	t.Helper()
	results := make([]Result, 0, len(types))
	for _, name := range types {
		r, err := sim.Simulate(name, "ITM-SEMI-001", 14, 1000)
		if err != nil {
			t.Fatalf("Simulate(%s) failed: %v", name, err)
		}
		results = append(results, *r)
	}
	return results
}

func TestRank(t *testing.T) {
	store := testStore()
	sim := NewSimulator(store)
	results := simulateAll(t, sim, "demand_deferral", "airfreight", "spot_market")

	ranking, err := NewRanker(store).Rank(results, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	wantOrder := []string{"airfreight", "spot_market", "demand_deferral"}
	if len(ranking.RankedScenarios) != len(wantOrder) {
		t.Fatalf("ranked %d scenarios, want %d", len(ranking.RankedScenarios), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got := ranking.RankedScenarios[i].ScenarioType; got != want {
			t.Errorf("rank %d = %s, want %s", i, got, want)
		}
	}

	wantScores := []float64{91.5, 76.7, 52.0}
	for i, want := range wantScores {
		if got := ranking.RankedScenarios[i].AdjustedScore; got != want {
			t.Errorf("adjusted score %d = %v, want %v", i, got, want)
		}
	}

	if ranking.TopRecommendation != "Airfreight + Premium Sourcing" {
		t.Errorf("top recommendation = %s", ranking.TopRecommendation)
	}
	if ranking.RiskAppetite != "medium" {
		t.Errorf("risk appetite = %s", ranking.RiskAppetite)
	}
}

func TestRank_AppetiteChangesScores(t *testing.T) {
	store := testStore()
	sim := NewSimulator(store)
	results := simulateAll(t, sim, "airfreight")

	ranker := NewRanker(store)
	low, err := ranker.Rank(results, "low")
	if err != nil {
		t.Fatalf("Rank(low) failed: %v", err)
	}
	high, err := ranker.Rank(results, "high")
	if err != nil {
		t.Fatalf("Rank(high) failed: %v", err)
	}

	// A service-protective profile rewards the high-service scenario more
	// than a cost-driven one does.
	if low.RankedScenarios[0].AdjustedScore <= high.RankedScenarios[0].AdjustedScore {
		t.Errorf("low appetite score %v should exceed high appetite score %v",
			low.RankedScenarios[0].AdjustedScore, high.RankedScenarios[0].AdjustedScore)
	}
}

func TestRank_InputOrderDoesNotMatter(t *testing.T) {
	store := testStore()
	sim := NewSimulator(store)
	ranker := NewRanker(store)

	a := simulateAll(t, sim, "airfreight", "spot_market", "demand_deferral")
	b := simulateAll(t, sim, "demand_deferral", "spot_market", "airfreight")

	rankA, err := ranker.Rank(a, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	rankB, err := ranker.Rank(b, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	for i := range rankA.RankedScenarios {
		if rankA.RankedScenarios[i].ScenarioType != rankB.RankedScenarios[i].ScenarioType {
			t.Errorf("rank %d differs across input permutations: %s vs %s",
				i, rankA.RankedScenarios[i].ScenarioType, rankB.RankedScenarios[i].ScenarioType)
		}
	}
}

func TestRank_TieBreaksOnScenarioType(t *testing.T) {
	store := testStore()
	tied := []Result{
		{ScenarioType: "demand_deferral", ScenarioName: "Defer", ServiceLevelProtection: "High"},
		{ScenarioType: "buffer_build", ScenarioName: "Buffer", ServiceLevelProtection: "High"},
	}

	ranking, err := NewRanker(store).Rank(tied, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if ranking.RankedScenarios[0].ScenarioType != "buffer_build" {
		t.Errorf("tie should break lexically, got %s first", ranking.RankedScenarios[0].ScenarioType)
	}
}

func TestRank_Idempotent(t *testing.T) {
	store := testStore()
	sim := NewSimulator(store)
	ranker := NewRanker(store)
	results := simulateAll(t, sim, "spot_market", "airfreight")

	first, err := ranker.Rank(results, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	again := make([]Result, 0, len(first.RankedScenarios))
	for _, r := range first.RankedScenarios {
		again = append(again, r.Result)
	}
	second, err := ranker.Rank(again, "medium")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	for i := range first.RankedScenarios {
		if first.RankedScenarios[i].ScenarioType != second.RankedScenarios[i].ScenarioType {
			t.Errorf("re-ranking changed order at %d", i)
		}
		if first.RankedScenarios[i].AdjustedScore != second.RankedScenarios[i].AdjustedScore {
			t.Errorf("re-ranking changed score at %d", i)
		}
	}
}

func TestRank_EmptyBatch(t *testing.T) {
	_, err := NewRanker(testStore()).Rank(nil, "medium")
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRank_MissingScenarioType(t *testing.T) {
	_, err := NewRanker(testStore()).Rank([]Result{{ScenarioName: "anonymous"}}, "medium")
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRank_UnknownAppetiteFallsBack(t *testing.T) {
	store := testStore()
	sim := NewSimulator(store)
	results := simulateAll(t, sim, "airfreight")

	ranking, err := NewRanker(store).Rank(results, "reckless")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	low, err := NewRanker(store).Rank(results, "low")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if ranking.RankedScenarios[0].AdjustedScore != low.RankedScenarios[0].AdjustedScore {
		t.Errorf("unknown appetite should score like the conservative profile")
	}
}
