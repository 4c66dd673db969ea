package hostaway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flexreviews/internal/adapters/hostaway"
	"flexreviews/internal/domain"
)

func tokenAwareServer(t *testing.T, tokenHits *int32, reviews http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accessTokens", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenHits, 1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/reviews", reviews)
	return httptest.NewServer(mux)
}

func TestClient_FetchReviews_TokenThenReviews(t *testing.T) {
	var tokenHits int32
	ts := tokenAwareServer(t, &tokenHits, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"result": []map[string]any{{"id": 7454.0, "type": "guest-to-host"}},
		})
	})
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "61148", "secret", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.FetchReviews(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0]["id"].(float64) != 7454 {
		t.Fatalf("unexpected payload: %+v", got)
	}

	// second fetch reuses the cached credential
	if _, err := cl.FetchReviews(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&tokenHits) != 1 {
		t.Fatalf("expected 1 token request, got %d", tokenHits)
	}
}

func TestClient_FetchReviews_RetriesThenSuccess(t *testing.T) {
	var tokenHits, reviewHits int32
	ts := tokenAwareServer(t, &tokenHits, func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&reviewHits, 1) {
		case 1, 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "result": []map[string]any{}})
		}
	})
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "61148", "secret", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cl.FetchReviews(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&reviewHits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", reviewHits)
	}
}

func TestClient_FetchReviews_NotFoundIsDomainSentinel(t *testing.T) {
	var tokenHits int32
	ts := tokenAwareServer(t, &tokenHits, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "61148", "secret", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = cl.FetchReviews(ctx)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
	if !errors.Is(err, hostaway.ErrNotFound) {
		t.Fatalf("expected the adapter sentinel to wrap the domain one, got %v", err)
	}
}

func TestClient_New_RequiresCredentials(t *testing.T) {
	if _, err := hostaway.New("https://api.hostaway.com", "", "", 5); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestSource_FallsBackToFixture(t *testing.T) {
	// unconfigured client serves the fixture directly
	src := hostaway.NewSource(nil)
	raws, err := src.FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(raws) == 0 {
		t.Fatalf("fixture must not be empty")
	}

	// failing upstream serves the fixture too
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	cl, err := hostaway.New(ts.URL, "61148", "secret", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	raws2, err := hostaway.NewSource(cl).FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("fallback must swallow the upstream failure: %v", err)
	}
	if len(raws2) != len(raws) {
		t.Fatalf("expected the same fixture either way: %d vs %d", len(raws2), len(raws))
	}
}

func TestFixtureReviews_FreshMapsPerCall(t *testing.T) {
	a, err := hostaway.FixtureReviews()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	a[0]["guestName"] = "MUTATED"
	b, _ := hostaway.FixtureReviews()
	if b[0]["guestName"] == "MUTATED" {
		t.Fatalf("fixture decode must not share state across calls")
	}
}
