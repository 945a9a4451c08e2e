// Package assistantnode holds the steps of the handle-message graph.
package assistantnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	UserInput string
}

type GraphOutput struct {
	Reply string
	// Route names the branch that produced Reply.
	Route string
}

type GraphState struct {
	SessionID string
	UserInput string
	Now       time.Time

	History []contractx.Turn
	Triage  contractx.TriageResult
	Route   string
	Reply   string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	if strings.TrimSpace(in.UserInput) == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		UserInput: in.UserInput,
		Now:       nowFn().UTC(),
	}, nil
}
