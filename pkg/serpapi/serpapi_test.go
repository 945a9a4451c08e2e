package serpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchTruncatesOrganicResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("q") != "golang" || q.Get("api_key") != "k" || q.Get("num") != "2" || q.Get("engine") != "google" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"organic_results":[`+
			`{"title":"Go","link":"https://go.dev","snippet":"The Go language"},`+
			`{"title":"Tour","link":"https://go.dev/tour","snippet":"A tour"},`+
			`{"title":"Blog","link":"https://go.dev/blog","snippet":"News"}]}`)
	}))
	defer srv.Close()

	client := NewClient(Config{Key: "k", BaseURL: srv.URL})
	results, err := client.Search(context.Background(), "golang", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Go" || results[1].Link != "https://go.dev/tour" {
		t.Fatalf("unexpected results %#v", results)
	}
}

func TestSearchWithoutKeyIsNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}).Search(context.Background(), "q", 5)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err.Error() != "SERPAPI_KEY not configured" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSearchSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Invalid API key."}`)
	}))
	defer srv.Close()

	_, err := NewClient(Config{Key: "bad", BaseURL: srv.URL}).Search(context.Background(), "q", 5)
	if err == nil || err.Error() != "search api error: Invalid API key." {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSearchRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Key: "k"}).Search(context.Background(), "q", 0); err == nil {
		t.Fatal("expected error for n=0")
	}
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"organic_results":[]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{Key: "k", BaseURL: srv.URL}).Search(ctx, "q", 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
