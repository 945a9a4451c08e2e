package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

func TestConvertMessagesLiftsSystemPrompt(t *testing.T) {
	t.Parallel()

	system, msgs := convertMessages([]*schema.Message{
		schema.SystemMessage("be brief"),
		schema.UserMessage("hi"),
		nil,
		schema.AssistantMessage("hello", nil),
	})
	if system != "be brief" {
		t.Fatalf("system = %q", system)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := (&Config{Model: "claude"}).New(context.Background()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGenerateCallsMessagesAPI(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("unexpected api key header %q", r.Header.Get("X-Api-Key"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",`+
			`"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}],`+
			`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	cm, err := (&Config{APIKey: "test-key", BaseURL: srv.URL, Model: "claude-test", MaxTokens: 64, Temperature: 0.2}).New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	msg, err := cm.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hi"),
	}, model.WithTemperature(0))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if msg.Content != "Hello there" {
		t.Fatalf("content = %q", msg.Content)
	}
	if got["model"] != "claude-test" {
		t.Fatalf("model = %v", got["model"])
	}
	if got["temperature"] != float64(0) {
		t.Fatalf("temperature = %v, want call option override", got["temperature"])
	}
}
