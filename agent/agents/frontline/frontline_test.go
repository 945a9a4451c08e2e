package frontline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

func TestParseDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantRoute bool
		wantText  string
	}{
		{
			name:     "direct answer",
			raw:      `{"route_to_orchestrator": false, "response": "Hi there!"}`,
			wantText: "Hi there!",
		},
		{
			name:      "routed with reason",
			raw:       `{"route_to_orchestrator": true, "reason": "needs web search"}`,
			wantRoute: true,
			wantText:  "needs web search",
		},
		{
			name:      "routed without reason uses default",
			raw:       `{"route_to_orchestrator": true}`,
			wantRoute: true,
			wantText:  "Specialized task detected",
		},
		{
			name:      "fenced json",
			raw:       "```json\n{\"route_to_orchestrator\": true, \"reason\": \"email\"}\n```",
			wantRoute: true,
			wantText:  "email",
		},
		{
			name:     "fenced without tag",
			raw:      "```\n{\"route_to_orchestrator\": false, \"response\": \"4\"}\n```",
			wantText: "4",
		},
		{
			name:     "missing route flag is direct",
			raw:      `{"response": "sure"}`,
			wantText: "sure",
		},
		{
			name:     "plain prose fails open",
			raw:      "Sure, here is a joke about gophers.",
			wantText: "Sure, here is a joke about gophers.",
		},
		{
			name:     "truncated json fails open",
			raw:      `{"route_to_orchestrator": true, "reason": "sea`,
			wantText: `{"route_to_orchestrator": true, "reason": "sea`,
		},
		{
			name:     "json scalar fails open",
			raw:      `"just a string"`,
			wantText: `"just a string"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseDecision(tt.raw)
			if got.RouteToOrchestrator != tt.wantRoute {
				t.Fatalf("RouteToOrchestrator = %v, want %v", got.RouteToOrchestrator, tt.wantRoute)
			}
			if got.Payload != tt.wantText {
				t.Fatalf("Payload = %q, want %q", got.Payload, tt.wantText)
			}
		})
	}
}

func TestParseDecisionNeverRoutesUnparseableText(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"route_to_orchestrator: true",
		"```json\nnot json\n```",
		"[true]",
		"null",
		"{route_to_orchestrator: true}",
	}
	for _, raw := range inputs {
		if got := ParseDecision(raw); got.RouteToOrchestrator {
			t.Fatalf("ParseDecision(%q) routed an unparseable reply", raw)
		}
	}
}

type recordingCompleter struct {
	reply string
	err   error
	calls int
	input string
}

func (r *recordingCompleter) Complete(ctx context.Context, input string) (string, error) {
	r.calls++
	r.input = input
	return r.reply, r.err
}

func TestTriageUsesLastFourTurns(t *testing.T) {
	t.Parallel()

	completer := &recordingCompleter{reply: `{"route_to_orchestrator": false, "response": "ok"}`}
	svc, err := New(completer)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	history := make([]contractx.Turn, 0, 6)
	for i := 1; i <= 6; i++ {
		history = append(history, contractx.Turn{Role: contractx.RoleUser, Content: fmt.Sprintf("turn-%d", i)})
	}

	got, err := svc.Triage(context.Background(), "what now?", history)
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if got.RouteToOrchestrator || got.Payload != "ok" {
		t.Fatalf("unexpected triage result %#v", got)
	}
	if completer.calls != 1 {
		t.Fatalf("expected exactly one completion call, got %d", completer.calls)
	}
	if strings.Contains(completer.input, "turn-2") || !strings.Contains(completer.input, "USER: turn-3") {
		t.Fatalf("history window is not the last four turns: %q", completer.input)
	}
	if !strings.Contains(completer.input, "Current user message: what now?") {
		t.Fatalf("current message missing: %q", completer.input)
	}
}

func TestTriagePropagatesCompletionError(t *testing.T) {
	t.Parallel()

	svc, err := New(&recordingCompleter{err: errors.New("timeout")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = svc.Triage(context.Background(), "hello", nil)
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestNewRequiresCompleter(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
