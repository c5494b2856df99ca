// Package api provides the HTTP surface the orchestration driver calls.
// Every endpoint answers a status-tagged envelope; engine errors map to
// 4xx/5xx but never escape as panics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"disruption-response/internal/exposure"
	"disruption-response/internal/recall"
	"disruption-response/internal/scenario"
	"disruption-response/pkg/api"
	"disruption-response/pkg/errors"
)

// Config holds server configuration
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 1 * 1024 * 1024, // 1MB
	}
}

// Server exposes the engine operations over HTTP
type Server struct {
	httpServer *http.Server
	calculator *exposure.Calculator
	simulator  *scenario.Simulator
	ranker     *scenario.Ranker
	memory     *recall.Engine
	config     *Config
	logger     *slog.Logger
}

// NewServer wires the engine components behind the HTTP surface
func NewServer(calc *exposure.Calculator, sim *scenario.Simulator, rank *scenario.Ranker, memory *recall.Engine, config *Config, logger *slog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		calculator: calc,
		simulator:  sim,
		ranker:     rank,
		memory:     memory,
		config:     config,
		logger:     logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleHealth)
	mux.HandleFunc("/api/v1/exposure/revenue-at-risk", s.handleRevenueAtRisk)
	mux.HandleFunc("/api/v1/inventory/", s.handleRunway)
	mux.HandleFunc("/api/v1/sla/breach", s.handleSLABreach)
	mux.HandleFunc("/api/v1/suppliers/", s.handleSupplierExposure)
	mux.HandleFunc("/api/v1/scenarios/simulate", s.handleSimulate)
	mux.HandleFunc("/api/v1/scenarios/rank", s.handleRank)
	mux.HandleFunc("/api/v1/scenarios/alternates", s.handleAlternates)
	mux.HandleFunc("/api/v1/scenarios/airfreight", s.handleAirfreight)
	mux.HandleFunc("/api/v1/recall/similar", s.handleRecall)
	mux.HandleFunc("/api/v1/events", s.handleLogEvent)
	mux.HandleFunc("/api/v1/patterns", s.handlePatterns)

	handler := s.requestIDMiddleware(s.loggingMiddleware(mux))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("API server starting", "port", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts the server and drains on SIGINT/SIGTERM
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).String())
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.Success(map[string]string{"status": "healthy"}))
}

// =============================================================================
// EXPOSURE ENDPOINTS
// =============================================================================

// RevenueAtRiskRequest is the API request for supplier exposure math
type RevenueAtRiskRequest struct {
	SupplierID string `json:"supplier_id"`
	DelayDays  int    `json:"estimated_delay_days"`
}

func (s *Server) handleRevenueAtRisk(w http.ResponseWriter, r *http.Request) {
	var req RevenueAtRiskRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.calculator.RevenueAtRisk(req.SupplierID, req.DelayDays)
	s.respond(w, result, err)
}

func (s *Server) handleRunway(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// /api/v1/inventory/{item}/runway
	itemID, ok := pathSegment(r.URL.Path, "/api/v1/inventory/", "/runway")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	result, err := s.calculator.InventoryRunway(itemID)
	s.respond(w, result, err)
}

// SLABreachRequest is the API request for breach probability
type SLABreachRequest struct {
	ProductionHaltDays float64 `json:"production_halt_days"`
	Customer           string  `json:"customer"`
}

func (s *Server) handleSLABreach(w http.ResponseWriter, r *http.Request) {
	var req SLABreachRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.calculator.SLABreachProbability(req.ProductionHaltDays, req.Customer)
	s.respond(w, result, err)
}

func (s *Server) handleSupplierExposure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// /api/v1/suppliers/{id}/exposure
	supplierID, ok := pathSegment(r.URL.Path, "/api/v1/suppliers/", "/exposure")
	if !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	result, err := s.calculator.SupplierExposure(supplierID)
	s.respond(w, result, err)
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// SimulateRequest is the API request for scenario simulation
type SimulateRequest struct {
	ScenarioType   string `json:"scenario_type"`
	ItemID         string `json:"affected_item_id"`
	DisruptionDays int    `json:"disruption_days"`
	QuantityNeeded int    `json:"quantity_needed"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.simulator.Simulate(req.ScenarioType, req.ItemID, req.DisruptionDays, req.QuantityNeeded)
	s.respond(w, result, err)
}

// RankRequest is the API request for scenario ranking
type RankRequest struct {
	Scenarios    []scenario.Result `json:"scenarios"`
	RiskAppetite string            `json:"risk_appetite"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.ranker.Rank(req.Scenarios, req.RiskAppetite)
	s.respond(w, result, err)
}

// AlternatesRequest is the API request for backup supplier lookup
type AlternatesRequest struct {
	Category       string   `json:"category"`
	ExcludeRegions []string `json:"exclude_regions"`
}

func (s *Server) handleAlternates(w http.ResponseWriter, r *http.Request) {
	var req AlternatesRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	s.respond(w, s.simulator.AlternativeSuppliers(req.Category, req.ExcludeRegions), nil)
}

// AirfreightRequest is the API request for emergency freight pricing
type AirfreightRequest struct {
	Origin      string  `json:"origin_country"`
	Destination string  `json:"destination_country"`
	WeightKg    float64 `json:"weight_kg"`
}

func (s *Server) handleAirfreight(w http.ResponseWriter, r *http.Request) {
	var req AirfreightRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.simulator.EstimateAirfreight(req.Origin, req.Destination, req.WeightKg)
	s.respond(w, result, err)
}

// =============================================================================
// MEMORY ENDPOINTS
// =============================================================================

// RecallRequest is the API request for similar-case retrieval
type RecallRequest struct {
	DisruptionType string `json:"disruption_type"`
	Region         string `json:"affected_region"`
	TopK           int    `json:"top_k"`
}

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	var req RecallRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.memory.RetrieveSimilar(r.Context(), req.DisruptionType, req.Region, req.TopK)
	s.respond(w, result, err)
}

func (s *Server) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	var req recall.LogRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	result, err := s.memory.LogEvent(r.Context(), req)
	s.respond(w, result, err)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, err := s.memory.RecurringPatterns(r.Context())
	s.respond(w, result, err)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		s.writeJSON(w, statusFor(err), api.Failure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.Success(result))
}

func statusFor(err error) int {
	switch {
	case errors.IsCode(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.IsCode(err, errors.ErrCodeInvalidInput),
		errors.IsCode(err, errors.ErrCodeUnknownScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, api.Envelope{Status: api.StatusError, Message: msg})
}

// pathSegment extracts the id between prefix and suffix in a REST path.
func pathSegment(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
