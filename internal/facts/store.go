package facts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"disruption-response/pkg/scoring"
)

// semiconductorTag marks semiconductor-class item ids. Items carrying the
// tag route to semiconductor-dependent production lines only.
const semiconductorTag = "SEMI"

// Snapshot is everything the engine knows about the business. It is built
// once and handed to each component's constructor; there is no ambient
// global config.
type Snapshot struct {
	Suppliers       []Supplier                     `json:"suppliers"`
	Inventory       []InventoryItem                `json:"inventory"`
	ProductionLines []ProductionLine               `json:"production_lines"`
	PurchaseOrders  []PurchaseOrder                `json:"open_purchase_orders"`
	CustomerSLAs    []CustomerSLA                  `json:"customer_slas"`
	Policy          InventoryPolicy                `json:"inventory_policy"`
	Scenarios       map[string]ScenarioDef         `json:"scenario_definitions"`
	Alternates      map[string][]AlternateSupplier `json:"alternative_suppliers"`
	AirfreightRates map[string]AirfreightRate      `json:"airfreight_rates"`
	Airfreight      AirfreightDefaults             `json:"airfreight_defaults"`

	// Two service-level score tables kept deliberately separate: the
	// simulator's policy-neutral table and the ranker's table may diverge
	// without coupling the two scoring contexts.
	ServiceLevelScores map[string]float64         `json:"service_level_scores"`
	RankServiceScores  map[string]float64         `json:"rank_service_scores"`
	RiskWeights        map[string]scoring.Weights `json:"risk_appetite_weights"`
}

// Store provides lookup access over a Snapshot. All lookups return a copy
// and an explicit found flag; callers translate a miss into NOT_FOUND
// rather than silently defaulting.
type Store struct {
	snap Snapshot
}

func NewStore(snap Snapshot) *Store {
	if snap.ServiceLevelScores == nil {
		snap.ServiceLevelScores = defaultServiceLevelScores()
	}
	if snap.RankServiceScores == nil {
		snap.RankServiceScores = defaultRankServiceScores()
	}
	if snap.RiskWeights == nil {
		snap.RiskWeights = defaultRiskWeights()
	}
	return &Store{snap: snap}
}

// Load reads the fact snapshot from three JSON files under dir:
// profile.json (suppliers, lines, SLAs, inventory policy), erp.json
// (inventory, open POs), and planning.json (scenario and rate constants).
func Load(dir string) (*Store, error) {
	var snap Snapshot

	if err := readJSON(filepath.Join(dir, "profile.json"), &snap); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "erp.json"), &snap); err != nil {
		return nil, fmt.Errorf("failed to load erp data: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "planning.json"), &snap); err != nil {
		return nil, fmt.Errorf("failed to load planning config: %w", err)
	}

	return NewStore(snap), nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

func (s *Store) Supplier(id string) (Supplier, bool) {
	for _, sup := range s.snap.Suppliers {
		if sup.ID == id {
			return sup, true
		}
	}
	return Supplier{}, false
}

func (s *Store) InventoryItem(itemID string) (InventoryItem, bool) {
	for _, item := range s.snap.Inventory {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return InventoryItem{}, false
}

// ItemsBySupplier returns every inventory item owned by the supplier. An
// empty slice is a valid answer: a supplier with no stocked items carries
// zero exposure, not an error.
func (s *Store) ItemsBySupplier(supplierID string) []InventoryItem {
	var items []InventoryItem
	for _, item := range s.snap.Inventory {
		if item.SupplierID == supplierID {
			items = append(items, item)
		}
	}
	return items
}

func (s *Store) ProductionLines() []ProductionLine {
	out := make([]ProductionLine, len(s.snap.ProductionLines))
	copy(out, s.snap.ProductionLines)
	return out
}

func (s *Store) OpenPurchaseOrders(supplierID string) []PurchaseOrder {
	var pos []PurchaseOrder
	for _, po := range s.snap.PurchaseOrders {
		if po.SupplierID == supplierID {
			pos = append(pos, po)
		}
	}
	return pos
}

func (s *Store) CustomerSLA(customer string) (CustomerSLA, bool) {
	for _, sla := range s.snap.CustomerSLAs {
		if sla.Customer == customer {
			return sla, true
		}
	}
	return CustomerSLA{}, false
}

func (s *Store) CustomerSLAs() []CustomerSLA {
	out := make([]CustomerSLA, len(s.snap.CustomerSLAs))
	copy(out, s.snap.CustomerSLAs)
	return out
}

func (s *Store) InventoryPolicy() InventoryPolicy {
	return s.snap.Policy
}

func (s *Store) Scenario(scenarioType string) (ScenarioDef, bool) {
	def, ok := s.snap.Scenarios[scenarioType]
	return def, ok
}

func (s *Store) Alternates(category string) []AlternateSupplier {
	out := make([]AlternateSupplier, len(s.snap.Alternates[category]))
	copy(out, s.snap.Alternates[category])
	return out
}

func (s *Store) AirfreightRate(origin, destination string) (AirfreightRate, bool) {
	rate, ok := s.snap.AirfreightRates[origin+"|"+destination]
	return rate, ok
}

func (s *Store) AirfreightDefaults() AirfreightDefaults {
	return s.snap.Airfreight
}

// ServiceScore looks up the simulator's service-level score, defaulting to
// a neutral 50 for unrecognized tiers.
func (s *Store) ServiceScore(level string) float64 {
	if v, ok := s.snap.ServiceLevelScores[level]; ok {
		return v
	}
	return 50
}

// RankServiceScore looks up the ranker's service-level score, defaulting
// to a pessimistic 20 for unrecognized tiers.
func (s *Store) RankServiceScore(level string) float64 {
	if v, ok := s.snap.RankServiceScores[level]; ok {
		return v
	}
	return 20
}

// RiskWeights resolves a named risk-appetite profile, falling back to the
// conservative "low" profile for unknown names.
func (s *Store) RiskWeights(profile string) scoring.Weights {
	if w, ok := s.snap.RiskWeights[profile]; ok {
		return w
	}
	return s.snap.RiskWeights["low"]
}

// SemiconductorClass reports whether an item routes to
// semiconductor-dependent production lines.
func SemiconductorClass(itemID string) bool {
	return strings.Contains(itemID, semiconductorTag)
}

func defaultServiceLevelScores() map[string]float64 {
	return map[string]float64{"High": 90, "Medium": 60, "Low": 30}
}

func defaultRankServiceScores() map[string]float64 {
	return map[string]float64{"High": 100, "Medium": 60, "Low": 25}
}

func defaultRiskWeights() map[string]scoring.Weights {
	return map[string]scoring.Weights{
		"low":    {Service: 0.6, Cost: 0.2, Speed: 0.2},
		"medium": {Service: 0.4, Cost: 0.4, Speed: 0.2},
		"high":   {Service: 0.2, Cost: 0.6, Speed: 0.2},
	}
}
