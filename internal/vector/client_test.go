package vector

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"disruption-response/internal/ledger"
)

func TestNilClientIsAbsentIndex(t *testing.T) {
	if NewClient("") != nil {
		t.Fatal("empty base URL should yield a nil client")
	}
	var c *Client
	if c.Available() {
		t.Error("nil client must report unavailable")
	}
}

func TestAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if !NewClient(healthy.URL).Available() {
		t.Error("healthy index reported unavailable")
	}

	sick := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer sick.Close()

	if NewClient(sick.URL).Available() {
		t.Error("sick index reported available")
	}
}

func TestEnsureCollection_ConflictIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).EnsureCollection(); err != nil {
		t.Errorf("409 should mean already exists, got %v", err)
	}
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := fmt.Sprintf("/collections/%s/count", Collection)
		if r.URL.Path != want {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"count": 42})
	}))
	defer srv.Close()

	count, err := NewClient(srv.URL).Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Vector []float64 `json:"vector"`
			Limit  int       `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Limit != 2 {
			t.Errorf("limit = %d, want 2", req.Limit)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": []Hit{
				{ID: "EVT-2026-0101-001", Score: 0.93, Payload: ledger.Event{Type: "Port Strike"}},
				{ID: "EVT-2026-0102-002", Score: 0.71, Payload: ledger.Event{Type: "Typhoon"}},
			},
		})
	}))
	defer srv.Close()

	hits, err := NewClient(srv.URL).Search([]float64{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "EVT-2026-0101-001" || hits[0].Payload.Type != "Port Strike" {
		t.Errorf("first hit = %+v", hits[0])
	}
}

func TestUpsert_EmptyBatchIsNoop(t *testing.T) {
	// No server at all: an empty upsert must not touch the network.
	c := NewClient("http://127.0.0.1:1")
	if err := c.Upsert(nil); err != nil {
		t.Errorf("empty upsert should be a no-op, got %v", err)
	}
}
