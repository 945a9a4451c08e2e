package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

type classifierImpl struct {
	runner compose.Runnable[map[string]any, contractx.RoutingDecision]
}

var _ contractx.Classifier = (*classifierImpl)(nil)

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: orchestrator", contractx.ErrPromptMissing)
	}
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.RoutingDecision, error) {
	if strings.TrimSpace(req.UserInput) == "" {
		return contractx.RoutingDecision{}, fmt.Errorf("%w: user input is required", contractx.ErrValidation)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": classifierInput(req),
	})
	if err != nil {
		return contractx.RoutingDecision{}, invokeError("classify", err)
	}

	if out.Parameters == nil {
		out.Parameters = map[string]any{}
	}
	return out, nil
}

func classifierInput(req contractx.ClassifyRequest) string {
	var sb strings.Builder
	sb.WriteString("Conversation History:\n")
	sb.WriteString(contractx.RenderHistory(req.History))
	sb.WriteString("\n\nCurrent User Request: ")
	sb.WriteString(req.UserInput)
	sb.WriteString("\n\nAnalyze this request and determine which worker should handle it.")
	return sb.String()
}
