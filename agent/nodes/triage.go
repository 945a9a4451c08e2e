package assistantnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

const (
	RouteDirectReply = "direct_reply"
	RouteOrchestrate = "orchestrate"

	frontlineDisabledReason = "Frontline disabled"
)

type Triager interface {
	Triage(ctx context.Context, userInput string, history []contractx.Turn) (contractx.TriageResult, error)
}

// Triage asks the frontline for a decision. A nil triager routes every message
// to the orchestrator.
func Triage(ctx context.Context, in *GraphState, triager Triager) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if triager == nil {
		in.Triage = contractx.TriageResult{RouteToOrchestrator: true, Payload: frontlineDisabledReason}
	} else {
		res, err := triager.Triage(ctx, in.UserInput, in.History)
		if err != nil {
			return nil, err
		}
		in.Triage = res
	}

	in.Route = RouteDirectReply
	if in.Triage.RouteToOrchestrator {
		in.Route = RouteOrchestrate
	}
	return in, nil
}

// SelectRoute is the branch condition after triage.
func SelectRoute(ctx context.Context, in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	switch in.Route {
	case RouteDirectReply, RouteOrchestrate:
		return in.Route, nil
	default:
		return "", fmt.Errorf("%w: unknown route %q", contractx.ErrValidation, in.Route)
	}
}
