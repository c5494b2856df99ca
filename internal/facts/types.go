// Package facts provides read-only access to supplier, inventory, and
// planning reference data. The store is loaded once at startup and treated
// as an immutable snapshot; nothing in the engine mutates it.
package facts

// Supplier is static reference data, refreshed out-of-band.
type Supplier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Category     string  `json:"category"`
	SpendPct     float64 `json:"spend_pct"`
	SingleSource bool    `json:"single_source"`
	HealthScore  float64 `json:"health_score"`
	LeadTimeDays int     `json:"lead_time_days"`
}

// InventoryItem carries the runway facts for one stocked part.
type InventoryItem struct {
	ItemID               string  `json:"item_id"`
	Description          string  `json:"description"`
	SupplierID           string  `json:"supplier_id"`
	DaysOnHand           float64 `json:"days_on_hand"`
	DailyConsumption     float64 `json:"daily_consumption"`
	StockUnits           float64 `json:"stock_units"`
	OnOrderUnits         float64 `json:"on_order_units"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date"`
}

// ProductionLine routes disrupted items to revenue: semiconductor-class
// items halt semiconductor-dependent lines, everything else halts the rest.
type ProductionLine struct {
	LineID                 string  `json:"line_id"`
	Product                string  `json:"product"`
	DailyRevenueUSD        float64 `json:"daily_revenue_usd"`
	SemiconductorDependent bool    `json:"semiconductor_dependent"`
}

// PurchaseOrder is an open PO against a supplier.
type PurchaseOrder struct {
	PONumber   string  `json:"po_number"`
	SupplierID string  `json:"supplier_id"`
	ValueUSD   float64 `json:"value_usd"`
	DueDate    string  `json:"due_date"`
}

// CustomerSLA is a delivery commitment with a daily breach penalty.
type CustomerSLA struct {
	Customer          string  `json:"customer"`
	OnTimeDeliveryPct float64 `json:"on_time_delivery_pct"`
	PenaltyPerDayUSD  float64 `json:"penalty_per_day_usd"`
}

// InventoryPolicy holds the runway alert thresholds.
type InventoryPolicy struct {
	ReorderThresholdDays float64 `json:"reorder_threshold_days"`
	TargetBufferDays     float64 `json:"target_buffer_days"`
}

// ScenarioDef is the static definition of one mitigation option.
type ScenarioDef struct {
	Name                   string   `json:"name"`
	Description            string   `json:"description"`
	BaseUnitCostUSD        float64  `json:"base_unit_cost_usd"`
	UnitCostPremiumPct     float64  `json:"unit_cost_premium_pct"`
	FixedCostUSD           float64  `json:"fixed_cost_usd"`
	ImplementationDays     int      `json:"implementation_days"`
	LeadTimeReductionDays  int      `json:"lead_time_reduction_days"`
	ServiceLevelProtection string   `json:"service_level_protection"`
	Risks                  []string `json:"risks"`
	CO2Impact              string   `json:"co2_impact"`
}

// AlternateSupplier is a qualified backup source for a component category.
type AlternateSupplier struct {
	Name            string  `json:"name"`
	Region          string  `json:"region"`
	LeadTimeDays    int     `json:"lead_time_days"`
	UnitCostPremium float64 `json:"unit_cost_premium_pct"`
	QualityRating   string  `json:"quality_rating"`
}

// AirfreightRate is the rate card entry for one origin|destination route.
type AirfreightRate struct {
	RatePerKg   float64 `json:"rate_per_kg"`
	TransitDays int     `json:"transit_days"`
}

// AirfreightDefaults covers routes missing from the rate card.
type AirfreightDefaults struct {
	DefaultRatePerKg   float64 `json:"default_rate_per_kg"`
	DefaultTransitDays int     `json:"default_transit_days"`
	HandlingFeeUSD     float64 `json:"handling_fee_usd"`
	CustomsPct         float64 `json:"customs_pct"`
}
