package openrouter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMissingModelsReportsUnlistedModels(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Title"); got != "Chative" {
			t.Errorf("X-Title = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[`+
			`{"id":"openai/gpt-4o-mini","object":"model","created":0,"owned_by":"openai"},`+
			`{"id":"anthropic/claude-3.5-haiku","object":"model","created":0,"owned_by":"anthropic"}]}`)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL, SiteName: "Chative"})
	missing, err := MissingModels(context.Background(), client, []string{"openai/gpt-4o-mini", "x-ai/unknown"})
	if err != nil {
		t.Fatalf("MissingModels() error = %v", err)
	}
	if len(missing) != 1 || missing[0] != "x-ai/unknown" {
		t.Fatalf("missing = %#v", missing)
	}
}

func TestNewClientWithoutKeyIsNil(t *testing.T) {
	t.Parallel()

	if NewClient(Config{}) != nil {
		t.Fatal("expected nil client without api key")
	}
	if _, err := MissingModels(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestHeaderTransportSetsAttribution(t *testing.T) {
	t.Parallel()

	var referer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
	}))
	defer srv.Close()

	cfg := &Config{SiteURL: "https://chative.example"}
	client := &http.Client{Transport: &headerTransport{base: http.DefaultTransport, headers: cfg.attributionHeaders()}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if referer != "https://chative.example" {
		t.Fatalf("HTTP-Referer = %q", referer)
	}
}
