package sportsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLiveMatches(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointInplay {
			t.Errorf("path = %q, want %q", r.URL.Path, endpointInplay)
		}
		if got := r.URL.Query().Get("token"); got != "secret" {
			t.Errorf("token = %q, want secret", got)
		}
		if got := r.URL.Query().Get("sport_id"); got != "1" {
			t.Errorf("sport_id = %q, want 1", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("user agent = %q, want %q", got, userAgent)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"success":1,"results":[{"id":"100"},{"id":"200"}]}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	matches, err := client.LiveMatches(context.Background())
	if err != nil {
		t.Fatalf("LiveMatches returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestAPIErrorResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"success":0,"error_detail":"TOKEN EXPIRED"}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	_, err := client.LiveMatches(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Detail != "TOKEN EXPIRED" {
		t.Errorf("detail = %q, want TOKEN EXPIRED", apiErr.Detail)
	}
}

func TestHTTPStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	var apiErr *APIError
	if _, err := client.LiveMatches(context.Background()); !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for HTTP 502, got %v", err)
	}
}

func TestMatchDetailsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"success":1,"results":[]}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	raw, err := client.MatchDetails(context.Background(), "12345")
	if err != nil {
		t.Fatalf("MatchDetails returned error: %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil for an absent event, got %s", raw)
	}
}

func TestFinishedMatchesDayFormat(t *testing.T) {
	t.Parallel()

	var gotDay string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDay = r.URL.Query().Get("day")
		if _, err := w.Write([]byte(`{"success":1,"results":[]}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	day := time.Date(2025, 7, 9, 15, 30, 0, 0, time.UTC)
	if _, err := client.FinishedMatches(context.Background(), day); err != nil {
		t.Fatalf("FinishedMatches returned error: %v", err)
	}
	if gotDay != "20250709" {
		t.Errorf("day parameter = %q, want 20250709", gotDay)
	}
}

func TestMatchStats(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"success":1,"results":{"1":"7","2":4}}`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", 1, time.Second, nil)

	raw, err := client.MatchStats(context.Background(), "12345")
	if err != nil {
		t.Fatalf("MatchStats returned error: %v", err)
	}
	stats := NormalizeStats(raw)
	if stats.ShotsHome != 7 || stats.ShotsAway != 4 {
		t.Errorf("shots = (%v, %v), want (7, 4)", stats.ShotsHome, stats.ShotsAway)
	}
}
