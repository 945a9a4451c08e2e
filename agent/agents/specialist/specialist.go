package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// textAgent is a free-text completion agent: one system prompt, one model.
type textAgent struct {
	agentType contractx.AgentType
	runner    compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Completer = (*textAgent)(nil)

func newTextAgent(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*textAgent, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: %s", contractx.ErrPromptMissing, agentType)
	}
	runner, err := compileTextLLMGraph(ctx, chatModel, systemPrompt, string(agentType)+".text_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s graph: %v", contractx.ErrModelInvoke, agentType, err)
	}
	return &textAgent{agentType: agentType, runner: runner}, nil
}

func (a *textAgent) Complete(ctx context.Context, input string) (string, error) {
	msg, err := a.runner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s invoke: %w", contractx.ErrModelInvoke, a.agentType, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: %s returned no message", contractx.ErrModelInvoke, a.agentType)
	}
	return msg.Content, nil
}
