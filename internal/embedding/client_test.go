package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNilClientIsAbsentEmbedder(t *testing.T) {
	if NewClient("", 768) != nil {
		t.Fatal("empty endpoint should yield a nil client")
	}
	var c *Client
	if c.Available() {
		t.Error("nil client must report unavailable")
	}
	if _, err := c.Embed("anything"); err == nil {
		t.Error("nil client Embed should error")
	}
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text       string `json:"text"`
			Dimensions int    `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Dimensions != 4 {
			t.Errorf("dimensions = %d, want 4", req.Dimensions)
		}
		json.NewEncoder(w).Encode(map[string]any{"vector": []float64{0.1, 0.2, 0.3, 0.4}})
	}))
	defer srv.Close()

	vec, err := NewClient(srv.URL, 4).Embed("port strike taiwan")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("vector length = %d, want 4", len(vec))
	}
}

func TestEmbed_EmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"vector": []float64{}})
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 4).Embed("text"); err == nil {
		t.Fatal("empty vector should be an error")
	}
}

func TestEmbed_TruncatesLongText(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req.Text)
		json.NewEncoder(w).Encode(map[string]any{"vector": []float64{0.5}})
	}))
	defer srv.Close()

	long := make([]byte, maxTextLen+500)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewClient(srv.URL, 4).Embed(string(long)); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if gotLen != maxTextLen {
		t.Errorf("shipped %d bytes, want %d", gotLen, maxTextLen)
	}
}
