// Package frontline decides whether a message is answered directly or handed to the orchestrator.
package frontline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/structured"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

const (
	HistoryWindow = 4

	defaultRouteReason = "Specialized task detected"
)

type Service struct {
	completer contractx.Completer
}

func New(completer contractx.Completer) (*Service, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: frontline completer is required", contractx.ErrValidation)
	}
	return &Service{completer: completer}, nil
}

// Triage makes one completion call over the last four turns and the current message.
// Completion errors propagate; an unparseable reply is treated as a direct answer.
func (s *Service) Triage(ctx context.Context, userInput string, history []contractx.Turn) (contractx.TriageResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("input", logx.Preview(userInput, 80)).Msg("frontline: processing request")

	raw, err := s.completer.Complete(ctx, buildInput(userInput, history))
	if err != nil {
		return contractx.TriageResult{}, fmt.Errorf("%w: frontline: %w", contractx.ErrModelInvoke, err)
	}

	result := ParseDecision(raw)
	if result.RouteToOrchestrator {
		logger.Info().Str("reason", result.Payload).Msg("frontline: routing to orchestrator")
	} else {
		logger.Info().Msg("frontline: handled directly")
	}
	return result, nil
}

func buildInput(userInput string, history []contractx.Turn) string {
	var sb strings.Builder
	sb.WriteString("Recent conversation:\n")
	sb.WriteString(contractx.RenderHistory(contractx.RecentTurns(history, HistoryWindow)))
	sb.WriteString("\n\nCurrent user message: ")
	sb.WriteString(userInput)
	sb.WriteString("\n\nDecide whether to handle this directly or route to the orchestrator.")
	return sb.String()
}

type decision struct {
	RouteToOrchestrator bool    `json:"route_to_orchestrator"`
	Response            string  `json:"response"`
	Reason              *string `json:"reason"`
}

// ParseDecision interprets the frontline reply. It never fails: text that is not a
// JSON decision is returned as a direct answer, so a malformed reply is never routed.
func ParseDecision(raw string) contractx.TriageResult {
	payload := structured.StripFence(raw)
	if !strings.HasPrefix(payload, "{") {
		return contractx.TriageResult{RouteToOrchestrator: false, Payload: raw}
	}

	var d decision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return contractx.TriageResult{RouteToOrchestrator: false, Payload: raw}
	}

	if d.RouteToOrchestrator {
		reason := defaultRouteReason
		if d.Reason != nil {
			reason = *d.Reason
		}
		return contractx.TriageResult{RouteToOrchestrator: true, Payload: reason}
	}
	return contractx.TriageResult{RouteToOrchestrator: false, Payload: d.Response}
}
