// Package scoring provides score math utilities shared by the simulator
// and the ranker. All scores live on a 0-100 scale.
package scoring

// FloorZero clamps negative sub-scores to zero.
func FloorZero(score float64) float64 {
	if score < 0 {
		return 0
	}
	return score
}

// Clamp01 ensures a probability is in valid range [0, 1].
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CostScore normalizes a unit-cost premium percentage into a 0-100 score.
// A 300% premium scores zero.
func CostScore(premiumPct float64) float64 {
	return FloorZero(100 - premiumPct/3)
}

// SpeedScore normalizes implementation days into a 0-100 score using the
// given per-day penalty.
func SpeedScore(implementationDays int, penaltyPerDay float64) float64 {
	return FloorZero(100 - float64(implementationDays)*penaltyPerDay)
}

// Weights is a service/cost/speed weighting. Profiles are expected to sum
// to 1.0 but Blend does not enforce it.
type Weights struct {
	Service float64 `json:"service"`
	Cost    float64 `json:"cost"`
	Speed   float64 `json:"speed"`
}

// Blend combines the three sub-scores under the given weights.
func Blend(service, cost, speed float64, w Weights) float64 {
	return service*w.Service + cost*w.Cost + speed*w.Speed
}

// Round1 rounds to one decimal place, the precision scores are reported at.
func Round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}

// Round2 rounds to two decimal places, the precision dollar figures and
// probabilities are reported at.
func Round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
