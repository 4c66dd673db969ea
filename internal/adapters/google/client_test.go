package google_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"flexreviews/internal/adapters/google"
)

func TestClient_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/textsearch/json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("key") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{{
				"place_id":           "pl-1",
				"name":               "The Hoxton",
				"formatted_address":  "81 Great Eastern St, London",
				"rating":             4.5,
				"user_ratings_total": 2100,
			}},
		})
	}))
	defer ts.Close()

	cl, err := google.New(ts.URL, "key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := cl.Search(context.Background(), "hoxton shoreditch")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].PlaceID != "pl-1" || got[0].Rating != 4.5 {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestClient_Search_ZeroResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS"})
	}))
	defer ts.Close()

	cl, _ := google.New(ts.URL, "key", 100)
	if _, err := cl.Search(context.Background(), "nope"); !errors.Is(err, google.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestNormalizeReviews_ScalesStars(t *testing.T) {
	raws := []map[string]any{
		{"author_name": "Jo", "text": "great", "rating": 4.0, "time": 1714489200.0},
		{"rating": "bad"}, // malformed rating degrades to nil
	}
	got := google.NormalizeReviews("The Hoxton", raws)
	if len(got) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(got))
	}
	if got[0].Rating == nil || *got[0].Rating != 8.0 {
		t.Fatalf("5-star scale must double onto 0-10: %v", got[0].Rating)
	}
	if got[0].ListingName != "The Hoxton" || got[0].GuestName != "Jo" {
		t.Fatalf("unexpected mapping: %+v", got[0])
	}
	if got[0].SubmittedAt == "" {
		t.Fatalf("unix time must map to submittedAt")
	}
	if got[1].Rating != nil || got[1].GuestName != "Unknown Guest" {
		t.Fatalf("malformed fields must degrade to defaults: %+v", got[1])
	}
	if got[0].ID != nil {
		t.Fatalf("google reviews carry no id")
	}
}
