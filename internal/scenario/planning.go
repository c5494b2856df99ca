package scenario

import (
	"time"

	"disruption-response/internal/facts"
	"disruption-response/pkg/errors"
	"disruption-response/pkg/scoring"
)

// AlternatesResult lists qualified backup suppliers for a category.
type AlternatesResult struct {
	Category          string                    `json:"category"`
	ExcludedRegions   []string                  `json:"excluded_regions"`
	AlternativesFound int                       `json:"alternatives_found"`
	Alternatives      []facts.AlternateSupplier `json:"alternative_suppliers"`
}

// AlternativeSuppliers filters the configured alternates catalog by
// category, optionally excluding risk regions. An empty result is a valid
// answer for single-sourced categories.
func (s *Simulator) AlternativeSuppliers(category string, excludeRegions []string) *AlternatesResult {
	excluded := make(map[string]bool, len(excludeRegions))
	for _, r := range excludeRegions {
		excluded[r] = true
	}

	candidates := s.facts.Alternates(category)
	kept := make([]facts.AlternateSupplier, 0, len(candidates))
	for _, alt := range candidates {
		if excluded[alt.Region] {
			continue
		}
		kept = append(kept, alt)
	}

	if excludeRegions == nil {
		excludeRegions = []string{}
	}
	return &AlternatesResult{
		Category:          category,
		ExcludedRegions:   excludeRegions,
		AlternativesFound: len(kept),
		Alternatives:      kept,
	}
}

// AirfreightEstimate is the landed-cost breakdown for an emergency
// shipment.
type AirfreightEstimate struct {
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	WeightKg           float64   `json:"weight_kg"`
	RatePerKgUSD       float64   `json:"rate_per_kg_usd"`
	TransitDays        int       `json:"transit_days"`
	FreightCostUSD     float64   `json:"freight_cost_usd"`
	HandlingFeeUSD     float64   `json:"handling_fee_usd"`
	CustomsEstimateUSD float64   `json:"customs_estimate_usd"`
	TotalEstimatedUSD  float64   `json:"total_estimated_cost_usd"`
	RetrievedAt        time.Time `json:"retrieved_at"`
}

// EstimateAirfreight prices an emergency shipment from the configured rate
// card, falling back to default rate and transit days for unknown routes.
func (s *Simulator) EstimateAirfreight(origin, destination string, weightKg float64) (*AirfreightEstimate, error) {
	if weightKg <= 0 {
		return nil, errors.NewInvalidInputError("shipment weight must be positive")
	}

	defaults := s.facts.AirfreightDefaults()
	rate, ok := s.facts.AirfreightRate(origin, destination)
	if !ok {
		rate = facts.AirfreightRate{
			RatePerKg:   defaults.DefaultRatePerKg,
			TransitDays: defaults.DefaultTransitDays,
		}
	}

	freight := rate.RatePerKg * weightKg
	customs := freight * defaults.CustomsPct

	return &AirfreightEstimate{
		Origin:             origin,
		Destination:        destination,
		WeightKg:           weightKg,
		RatePerKgUSD:       rate.RatePerKg,
		TransitDays:        rate.TransitDays,
		FreightCostUSD:     scoring.Round2(freight),
		HandlingFeeUSD:     defaults.HandlingFeeUSD,
		CustomsEstimateUSD: scoring.Round2(customs),
		TotalEstimatedUSD:  scoring.Round2(freight + defaults.HandlingFeeUSD + customs),
		RetrievedAt:        time.Now(),
	}, nil
}
