// Package assistant runs one inbound message through triage and orchestration
// and delivers exactly one reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	nodex "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/nodes"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

const (
	ConfigurationMessage = "LLM_API_KEY is not configured. Please set it in your environment."
	ApologyMessage       = "Sorry, there was an error generating the response."
)

var ErrInvalidSession = nodex.ErrInvalidSession

type Inbound struct {
	SessionID string
	// Payload is bare text or a list of {role, content} messages.
	Payload any
}

type Config struct {
	// MissingCredential answers every message with ConfigurationMessage.
	MissingCredential bool
}

type Assistant struct {
	history   nodex.History
	triager   nodex.Triager
	processor nodex.Processor

	missingCredential bool

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

// New wires the pipeline. A nil triager disables the frontline and sends every
// message to the processor. The processor may be nil only when the credential is missing.
func New(
	history nodex.History,
	processor nodex.Processor,
	triager nodex.Triager,
	cfg Config,
) (*Assistant, error) {
	if history == nil {
		return nil, errors.New("history store is required")
	}
	if processor == nil && !cfg.MissingCredential {
		return nil, errors.New("orchestrator is required")
	}

	a := &Assistant{
		history:           history,
		triager:           triager,
		processor:         processor,
		missingCredential: cfg.MissingCredential,
		now:               time.Now,
	}

	graphRunner, err := a.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// Respond answers one inbound message and delivers the reply to sink. The assistant
// turn is recorded even when delivery fails. It returns ErrNoUserInput without
// delivering anything when the payload carries no user text.
func (a *Assistant) Respond(ctx context.Context, in Inbound, sink contractx.ReplySink) (string, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	if sink == nil {
		return "", fmt.Errorf("%w: reply sink is required", contractx.ErrValidation)
	}

	ctx = logx.WithSession(ctx, sessionID)
	logger := zerolog.Ctx(ctx)

	if a.missingCredential {
		logger.Warn().Msg("assistant: called without LLM credential configured")
		if err := sink.Deliver(ctx, sessionID, ConfigurationMessage); err != nil {
			return ConfigurationMessage, fmt.Errorf("deliver reply: %w", err)
		}
		return ConfigurationMessage, nil
	}

	userInput, err := ExtractUserInput(in.Payload)
	if err != nil {
		logger.Warn().Msg("assistant: empty user input, skipping")
		return "", err
	}

	logger.Info().Str("input", logx.Preview(userInput, 50)).Msg("assistant: processing message")

	reply, route := ApologyMessage, ""
	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		UserInput: userInput,
	})
	if err != nil {
		logger.Error().Err(err).Msg("assistant: pipeline failed")
	} else {
		reply, route = out.Reply, out.Route
	}

	var errs []error
	if err := sink.Deliver(ctx, sessionID, reply); err != nil {
		logger.Error().Err(err).Msg("assistant: deliver reply failed")
		errs = append(errs, fmt.Errorf("deliver reply: %w", err))
	}
	if err := a.history.Append(ctx, sessionID, contractx.Turn{Role: contractx.RoleAssistant, Content: reply}); err != nil {
		logger.Error().Err(err).Msg("assistant: record assistant turn failed")
		errs = append(errs, fmt.Errorf("record assistant turn: %w", err))
	}

	logger.Info().Str("route", route).Msg("assistant: processing complete")
	return reply, errors.Join(errs...)
}
