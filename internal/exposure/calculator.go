// Package exposure turns supplier, inventory, and SLA facts into dollar
// and day figures for a disruption of a given duration.
package exposure

import (
	"fmt"

	"disruption-response/internal/facts"
	"disruption-response/pkg/errors"
	"disruption-response/pkg/scoring"
)

// Calculator maps disruption facts to financial exposure. All methods are
// pure over the immutable fact snapshot.
type Calculator struct {
	facts *facts.Store
}

func NewCalculator(store *facts.Store) *Calculator {
	return &Calculator{facts: store}
}

// AtRiskLine is one production line affected by a supply halt.
type AtRiskLine struct {
	LineID             string  `json:"line_id"`
	Product            string  `json:"product"`
	ItemID             string  `json:"item_id"`
	DaysOnHand         float64 `json:"days_on_hand"`
	StockoutDay        float64 `json:"stockout_day"`
	ProductionHaltDays float64 `json:"production_halt_days"`
	DailyRevenueUSD    float64 `json:"daily_revenue_usd"`
	RevenueAtRiskUSD   float64 `json:"revenue_at_risk_usd"`
}

// RevenueAtRiskResult is the aggregated exposure for one supplier outage.
type RevenueAtRiskResult struct {
	SupplierID       string       `json:"supplier_id"`
	DisruptionDays   int          `json:"disruption_duration_days"`
	AffectedLines    []AtRiskLine `json:"affected_production_lines"`
	RevenueAtRiskUSD float64      `json:"total_revenue_at_risk_usd"`
	SLAPenaltiesUSD  float64      `json:"sla_penalties_at_risk_usd"`
	TotalExposureUSD float64      `json:"total_financial_exposure_usd"`
	Summary          string       `json:"summary"`
}

// RevenueAtRisk computes exposure if the supplier is disrupted for
// delayDays. A supplier with zero inventory items yields zero exposure and
// an empty affected-lines list, not an error.
func (c *Calculator) RevenueAtRisk(supplierID string, delayDays int) (*RevenueAtRiskResult, error) {
	if delayDays < 0 {
		return nil, errors.NewInvalidInputError("delay days must be non-negative")
	}

	result := &RevenueAtRiskResult{
		SupplierID:     supplierID,
		DisruptionDays: delayDays,
		AffectedLines:  []AtRiskLine{},
	}

	items := c.facts.ItemsBySupplier(supplierID)
	lines := c.facts.ProductionLines()

	var totalRevenueAtRisk float64
	for _, item := range items {
		haltDays := float64(delayDays) - item.DaysOnHand
		if haltDays < 0 {
			haltDays = 0
		}

		for _, line := range lines {
			// Category-tag routing: semiconductor-class items halt only
			// semiconductor-dependent lines, other items halt the rest.
			if facts.SemiconductorClass(item.ItemID) != line.SemiconductorDependent {
				continue
			}
			revenueAtRisk := line.DailyRevenueUSD * haltDays
			totalRevenueAtRisk += revenueAtRisk
			result.AffectedLines = append(result.AffectedLines, AtRiskLine{
				LineID:             line.LineID,
				Product:            line.Product,
				ItemID:             item.ItemID,
				DaysOnHand:         item.DaysOnHand,
				StockoutDay:        item.DaysOnHand,
				ProductionHaltDays: haltDays,
				DailyRevenueUSD:    line.DailyRevenueUSD,
				RevenueAtRiskUSD:   revenueAtRisk,
			})
		}
	}

	// SLA penalties use the single worst-case halt across all affected
	// lines for every configured SLA, a deliberately conservative single
	// exposure number rather than a per-customer halt.
	var worstHalt float64
	for _, l := range result.AffectedLines {
		if l.ProductionHaltDays > worstHalt {
			worstHalt = l.ProductionHaltDays
		}
	}
	var slaPenalties float64
	for _, sla := range c.facts.CustomerSLAs() {
		slaPenalties += sla.PenaltyPerDayUSD * worstHalt
	}

	result.RevenueAtRiskUSD = scoring.Round2(totalRevenueAtRisk)
	result.SLAPenaltiesUSD = scoring.Round2(slaPenalties)
	result.TotalExposureUSD = scoring.Round2(totalRevenueAtRisk + slaPenalties)
	result.Summary = fmt.Sprintf(
		"A %d-day disruption from %s puts $%.0f in revenue and $%.0f in SLA penalties at risk.",
		delayDays, supplierID, totalRevenueAtRisk, slaPenalties)
	return result, nil
}

// Runway alert levels, ordered from healthy to critical.
const (
	AlertOK       = "OK"
	AlertLow      = "LOW"
	AlertWarning  = "WARNING"
	AlertCritical = "CRITICAL"
)

// RunwayResult reports remaining inventory days against buffer policy.
type RunwayResult struct {
	ItemID               string  `json:"item_id"`
	Description          string  `json:"description"`
	SupplierID           string  `json:"supplier_id"`
	DaysOnHand           float64 `json:"days_on_hand"`
	DailyConsumption     float64 `json:"daily_consumption"`
	StockUnits           float64 `json:"stock_units"`
	OnOrderUnits         float64 `json:"on_order_units"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date"`
	ReorderThresholdDays float64 `json:"reorder_threshold_days"`
	TargetBufferDays     float64 `json:"target_buffer_days"`
	AlertLevel           string  `json:"alert_level"`
	DaysUntilStockout    float64 `json:"days_until_stockout"`
	Summary              string  `json:"summary"`
}

// InventoryRunway classifies an item's days-on-hand against the configured
// reorder and target-buffer thresholds.
func (c *Calculator) InventoryRunway(itemID string) (*RunwayResult, error) {
	item, ok := c.facts.InventoryItem(itemID)
	if !ok {
		return nil, errors.NewNotFoundError("inventory item", itemID)
	}

	policy := c.facts.InventoryPolicy()
	alert := AlertOK
	switch {
	case item.DaysOnHand <= policy.ReorderThresholdDays:
		alert = AlertCritical
	case item.DaysOnHand <= policy.TargetBufferDays*0.5:
		alert = AlertWarning
	case item.DaysOnHand < policy.TargetBufferDays:
		alert = AlertLow
	}

	return &RunwayResult{
		ItemID:               item.ItemID,
		Description:          item.Description,
		SupplierID:           item.SupplierID,
		DaysOnHand:           item.DaysOnHand,
		DailyConsumption:     item.DailyConsumption,
		StockUnits:           item.StockUnits,
		OnOrderUnits:         item.OnOrderUnits,
		ExpectedDeliveryDate: item.ExpectedDeliveryDate,
		ReorderThresholdDays: policy.ReorderThresholdDays,
		TargetBufferDays:     policy.TargetBufferDays,
		AlertLevel:           alert,
		DaysUntilStockout:    item.DaysOnHand,
		Summary: fmt.Sprintf("%s: %.1f days on hand - Alert: %s",
			item.Description, item.DaysOnHand, alert),
	}, nil
}

// breachRatePerHaltDay is the slope of the linear breach model: 12.5 halt
// days implies certainty of breach.
const breachRatePerHaltDay = 0.08

// BreachResult reports breach probability and penalty exposure for one SLA.
type BreachResult struct {
	Customer           string  `json:"customer"`
	SLATargetPct       float64 `json:"sla_target_pct"`
	ProductionHaltDays float64 `json:"production_halt_days"`
	BreachProbability  float64 `json:"breach_probability"`
	PenaltyPerDayUSD   float64 `json:"penalty_per_day_usd"`
	PenaltyExposureUSD float64 `json:"total_penalty_exposure_usd"`
	Severity           string  `json:"severity"`
}

// SLABreachProbability applies the linear capped breach model to a halt of
// the given length. The model is deliberately simple and monotonic, not a
// statistical fit.
func (c *Calculator) SLABreachProbability(haltDays float64, customer string) (*BreachResult, error) {
	sla, ok := c.facts.CustomerSLA(customer)
	if !ok {
		return nil, errors.NewNotFoundError("customer SLA", customer)
	}

	probability := scoring.Clamp01(haltDays * breachRatePerHaltDay)
	severity := "MEDIUM"
	if probability > 0.7 {
		severity = "CRITICAL"
	} else if probability > 0.4 {
		severity = "HIGH"
	}

	return &BreachResult{
		Customer:           customer,
		SLATargetPct:       sla.OnTimeDeliveryPct,
		ProductionHaltDays: haltDays,
		BreachProbability:  scoring.Round2(probability),
		PenaltyPerDayUSD:   sla.PenaltyPerDayUSD,
		PenaltyExposureUSD: scoring.Round2(sla.PenaltyPerDayUSD * haltDays),
		Severity:           severity,
	}, nil
}

// SupplierExposureResult is the qualitative risk profile for one supplier.
type SupplierExposureResult struct {
	Supplier           facts.Supplier        `json:"supplier"`
	OpenPurchaseOrders []facts.PurchaseOrder `json:"open_purchase_orders"`
	OpenPOValueUSD     float64               `json:"total_open_po_value_usd"`
	RiskFlags          []string              `json:"risk_flags"`
	OverallRiskRating  string                `json:"overall_risk_rating"`
	Summary            string                `json:"summary"`
}

// SupplierExposure aggregates open PO value and raises qualitative risk
// flags under fixed rules. The rating floor is MEDIUM: this is only called
// once a disruption signal already exists, so LOW is never the answer.
func (c *Calculator) SupplierExposure(supplierID string) (*SupplierExposureResult, error) {
	supplier, ok := c.facts.Supplier(supplierID)
	if !ok {
		return nil, errors.NewNotFoundError("supplier", supplierID)
	}

	pos := c.facts.OpenPurchaseOrders(supplierID)
	var openValue float64
	for _, po := range pos {
		openValue += po.ValueUSD
	}

	var flags []string
	if supplier.SpendPct > 35 {
		flags = append(flags, fmt.Sprintf("HIGH CONCENTRATION: %.0f%% of total spend", supplier.SpendPct))
	}
	if supplier.SingleSource {
		flags = append(flags, "SINGLE SOURCE: No qualified backup supplier")
	}
	if supplier.HealthScore < 70 {
		flags = append(flags, fmt.Sprintf("LOW HEALTH SCORE: %.0f/100", supplier.HealthScore))
	}
	if supplier.LeadTimeDays > 30 {
		flags = append(flags, fmt.Sprintf("LONG LEAD TIME: %d days - low flexibility", supplier.LeadTimeDays))
	}

	rating := "MEDIUM"
	if len(flags) >= 3 {
		rating = "CRITICAL"
	} else if len(flags) >= 2 {
		rating = "HIGH"
	}

	return &SupplierExposureResult{
		Supplier:           supplier,
		OpenPurchaseOrders: pos,
		OpenPOValueUSD:     openValue,
		RiskFlags:          flags,
		OverallRiskRating:  rating,
		Summary: fmt.Sprintf("%s: %s risk - %d flags. $%.0f in open POs at risk.",
			supplier.Name, rating, len(flags), openValue),
	}, nil
}
