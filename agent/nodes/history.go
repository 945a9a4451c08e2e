package assistantnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// HistoryWindow is the number of turns loaded for triage and classification.
// The window includes the turn recorded for the current message.
const HistoryWindow = 6

type History interface {
	Append(ctx context.Context, sessionID string, turn contractx.Turn) error
	Recent(ctx context.Context, sessionID string, k int) ([]contractx.Turn, error)
}

func RecordUserTurn(ctx context.Context, in *GraphState, history History) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turn := contractx.Turn{Role: contractx.RoleUser, Content: in.UserInput}
	if err := history.Append(ctx, in.SessionID, turn); err != nil {
		return nil, fmt.Errorf("record user turn: %w", err)
	}
	return in, nil
}

func LoadHistory(ctx context.Context, in *GraphState, history History) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turns, err := history.Recent(ctx, in.SessionID, HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	in.History = turns
	return in, nil
}
