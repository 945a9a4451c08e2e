package prompt

import (
	"context"
	"strings"
	"testing"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

func TestLoadPromptSetFormatsAsFString(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	prompts := map[string]string{
		"frontline":    set.Frontline,
		"orchestrator": set.Orchestrator,
		"evaluator":    set.Evaluator,
		"search":       set.Search,
		"email":        set.Email,
		"general":      set.General,
	}

	for name, system := range prompts {
		if strings.TrimSpace(system) == "" {
			t.Fatalf("%s prompt is empty", name)
		}

		tpl := einoprompt.FromMessages(schema.FString, schema.SystemMessage(system), schema.UserMessage("{input}"))
		msgs, err := tpl.Format(context.Background(), map[string]any{"input": "hello"})
		if err != nil {
			t.Fatalf("%s prompt does not format: %v", name, err)
		}
		if len(msgs) != 2 || msgs[1].Content != "hello" {
			t.Fatalf("%s prompt rendered unexpected messages %#v", name, msgs)
		}
	}
}

func TestStructuredPromptsRenderLiteralJSON(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	tpl := einoprompt.FromMessages(schema.FString, schema.SystemMessage(set.Frontline))
	msgs, err := tpl.Format(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(msgs[0].Content, `{"route_to_orchestrator": false`) {
		t.Fatalf("doubled braces were not collapsed: %s", msgs[0].Content)
	}
}
