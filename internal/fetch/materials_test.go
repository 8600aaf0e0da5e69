package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMostStable_PicksLowestEnergyAboveHull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("api key header: got %q", got)
		}
		if got := r.URL.Query().Get("formula"); got != "GaN" {
			t.Errorf("formula query: got %q", got)
		}
		_, _ = w.Write([]byte(`{"data": [
			{"material_id": "mp-2", "energy_above_hull": 0.12, "is_stable": false, "structure": {}},
			{"material_id": "mp-1", "energy_above_hull": 0.0, "is_stable": true, "structure": {}},
			{"material_id": "mp-3", "energy_above_hull": 0.05, "is_stable": false, "structure": {}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.BaseURL = srv.URL

	doc, err := c.MostStable(context.Background(), "GaN")
	if err != nil {
		t.Fatal(err)
	}
	if doc.MaterialID != "mp-1" {
		t.Errorf("got %q, want mp-1", doc.MaterialID)
	}
	if !doc.IsStable {
		t.Error("expected stable doc")
	}
}

func TestMostStable_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := NewClient("k")
	c.BaseURL = srv.URL

	if _, err := c.MostStable(context.Background(), "Xx"); err == nil {
		t.Fatal("expected error for empty result set")
	}
}

func TestMostStable_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.BaseURL = srv.URL

	if _, err := c.MostStable(context.Background(), "Si"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
