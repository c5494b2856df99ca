package facts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "profile.json", `{
		"suppliers": [
			{"id": "S-1", "name": "TaiChip", "country": "Taiwan", "category": "semiconductors",
			 "spend_pct": 42, "single_source": true, "health_score": 58, "lead_time_days": 45}
		],
		"production_lines": [
			{"line_id": "LINE-1", "product": "Control Unit", "daily_revenue_usd": 250000, "semiconductor_dependent": true}
		],
		"customer_slas": [
			{"customer": "BMW Group", "on_time_delivery_pct": 95, "penalty_per_day_usd": 50000}
		],
		"inventory_policy": {"reorder_threshold_days": 7, "target_buffer_days": 21}
	}`)
	writeFile(t, dir, "erp.json", `{
		"inventory": [
			{"item_id": "ITM-SEMI-001", "description": "MCU", "supplier_id": "S-1",
			 "days_on_hand": 6, "daily_consumption": 1000, "stock_units": 6000}
		],
		"open_purchase_orders": [
			{"po_number": "PO-100", "supplier_id": "S-1", "value_usd": 120000, "due_date": "2026-09-15"}
		]
	}`)
	writeFile(t, dir, "planning.json", `{
		"scenario_definitions": {
			"airfreight": {"name": "Airfreight + Premium Sourcing", "base_unit_cost_usd": 10,
			 "unit_cost_premium_pct": 50, "fixed_cost_usd": 5000, "implementation_days": 3,
			 "service_level_protection": "High"}
		},
		"airfreight_defaults": {"default_rate_per_kg": 8, "default_transit_days": 3,
		 "handling_fee_usd": 500, "customs_pct": 0.05}
	}`)

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sup, ok := store.Supplier("S-1")
	if !ok {
		t.Fatal("expected supplier S-1")
	}
	if sup.Name != "TaiChip" || sup.SpendPct != 42 || !sup.SingleSource {
		t.Errorf("unexpected supplier: %+v", sup)
	}

	item, ok := store.InventoryItem("ITM-SEMI-001")
	if !ok {
		t.Fatal("expected item ITM-SEMI-001")
	}
	if item.DaysOnHand != 6 {
		t.Errorf("DaysOnHand = %v, want 6", item.DaysOnHand)
	}

	if _, ok := store.Scenario("airfreight"); !ok {
		t.Error("expected airfreight scenario")
	}
	if got := store.InventoryPolicy().TargetBufferDays; got != 21 {
		t.Errorf("TargetBufferDays = %v, want 21", got)
	}
}

func TestLoad_ShippedSnapshot(t *testing.T) {
	store, err := Load("../../data")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The snapshot must define every scenario type a driver can name.
	for _, scenarioType := range []string{
		"airfreight", "alternate_supplier", "buffer_build", "demand_deferral", "spot_market",
	} {
		if _, ok := store.Scenario(scenarioType); !ok {
			t.Errorf("shipped snapshot missing scenario %s", scenarioType)
		}
	}

	air, _ := store.Scenario("airfreight")
	if air.BaseUnitCostUSD != 2 || air.UnitCostPremiumPct != 150 ||
		air.FixedCostUSD != 10000 || air.ImplementationDays != 3 {
		t.Errorf("unexpected airfreight definition: %+v", air)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing snapshot files")
	}
}

func TestStore_Misses(t *testing.T) {
	store := NewStore(Snapshot{})

	if _, ok := store.Supplier("S-NONE"); ok {
		t.Error("expected supplier miss")
	}
	if _, ok := store.InventoryItem("ITM-NONE"); ok {
		t.Error("expected inventory miss")
	}
	if _, ok := store.CustomerSLA("Nobody"); ok {
		t.Error("expected SLA miss")
	}
	if _, ok := store.Scenario("teleport"); ok {
		t.Error("expected scenario miss")
	}
	if items := store.ItemsBySupplier("S-NONE"); len(items) != 0 {
		t.Errorf("expected empty item list, got %d", len(items))
	}
}

func TestStore_DefaultTables(t *testing.T) {
	store := NewStore(Snapshot{})

	if got := store.ServiceScore("High"); got != 90 {
		t.Errorf("ServiceScore(High) = %v, want 90", got)
	}
	if got := store.ServiceScore("Unrecognized"); got != 50 {
		t.Errorf("ServiceScore fallback = %v, want 50", got)
	}
	if got := store.RankServiceScore("High"); got != 100 {
		t.Errorf("RankServiceScore(High) = %v, want 100", got)
	}
	if got := store.RankServiceScore("Unrecognized"); got != 20 {
		t.Errorf("RankServiceScore fallback = %v, want 20", got)
	}

	w := store.RiskWeights("medium")
	if w.Service != 0.4 || w.Cost != 0.4 || w.Speed != 0.2 {
		t.Errorf("medium weights = %+v", w)
	}
	// Unknown profiles resolve to the conservative default.
	if got := store.RiskWeights("yolo"); got != store.RiskWeights("low") {
		t.Errorf("unknown profile weights = %+v", got)
	}
}

func TestSemiconductorClass(t *testing.T) {
	if !SemiconductorClass("ITM-SEMI-001") {
		t.Error("ITM-SEMI-001 should be semiconductor class")
	}
	if SemiconductorClass("ITM-RESIN-002") {
		t.Error("ITM-RESIN-002 should not be semiconductor class")
	}
}
