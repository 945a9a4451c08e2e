package assistantnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

type Processor interface {
	Process(ctx context.Context, userInput string, history []contractx.Turn) (string, error)
}

func DirectReply(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Reply = in.Triage.Payload
	return in, nil
}

func Orchestrate(ctx context.Context, in *GraphState, processor Processor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := processor.Process(ctx, in.UserInput, in.History)
	if err != nil {
		return nil, err
	}
	in.Reply = reply
	return in, nil
}
