package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

type evaluatorImpl struct {
	runner compose.Runnable[map[string]any, contractx.EvaluationResult]
}

var _ contractx.Evaluator = (*evaluatorImpl)(nil)

func newEvaluator(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*evaluatorImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: evaluator", contractx.ErrPromptMissing)
	}
	runner, err := compileEvaluatorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile evaluator graph: %v", contractx.ErrModelInvoke, err)
	}
	return &evaluatorImpl{runner: runner}, nil
}

// Evaluate returns the model's verdict as-is. Passed and Score are not reconciled.
func (e *evaluatorImpl) Evaluate(ctx context.Context, req contractx.EvaluateRequest) (contractx.EvaluationResult, error) {
	input := fmt.Sprintf(
		"Task Description: %s\n\nSuccess Criteria: %s\n\nWorker Output:\n%s\n\nEvaluate this output against the success criteria and provide your assessment.",
		req.TaskDescription, req.SuccessCriteria, req.WorkerOutput,
	)

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return contractx.EvaluationResult{}, invokeError("evaluate", err)
	}
	return out, nil
}
