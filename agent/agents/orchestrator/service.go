// Package orchestrator classifies a request and drives the worker/evaluator retry loop.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

const (
	MaxRetries    = 3
	HistoryWindow = 6
)

// Workers resolves a worker kind to its executor.
type Workers interface {
	Lookup(kind contractx.WorkerKind) (contractx.Worker, bool)
}

type Option func(*Orchestrator)

// WithMaxAttempts overrides MaxRetries. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxAttempts = n
		}
	}
}

type Orchestrator struct {
	classifier  contractx.Classifier
	evaluator   contractx.Evaluator
	workers     Workers
	maxAttempts int
}

func New(
	classifier contractx.Classifier,
	evaluator contractx.Evaluator,
	workers Workers,
	opts ...Option,
) (*Orchestrator, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", contractx.ErrValidation)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is required", contractx.ErrValidation)
	}
	if workers == nil {
		return nil, fmt.Errorf("%w: worker table is required", contractx.ErrValidation)
	}

	o := &Orchestrator{
		classifier:  classifier,
		evaluator:   evaluator,
		workers:     workers,
		maxAttempts: MaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) MaxAttempts() int {
	return o.maxAttempts
}

// Classify routes the request using the last six turns of history. Errors are returned as is.
func (o *Orchestrator) Classify(ctx context.Context, userInput string, history []contractx.Turn) (contractx.RoutingDecision, error) {
	return o.classifier.Classify(ctx, contractx.ClassifyRequest{
		UserInput: userInput,
		History:   contractx.RecentTurns(history, HistoryWindow),
	})
}

// Process classifies the request and runs the selected worker until the evaluator
// passes its output or the attempts run out. Only classification and evaluation
// errors are returned; worker failures become an "Error: ..." reply.
func (o *Orchestrator) Process(ctx context.Context, userInput string, history []contractx.Turn) (string, error) {
	logger := zerolog.Ctx(ctx)

	decision, err := o.Classify(ctx, userInput, history)
	if err != nil {
		logger.Error().Err(err).Msg("orchestrator: classification failed")
		return "", err
	}

	logger.Info().
		Str("worker", string(decision.WorkerKind)).
		Str("task", logx.Preview(decision.TaskDescription, 80)).
		Msg("orchestrator: routing decision")

	if decision.WorkerKind == contractx.WorkerNone {
		return "I'm unable to help with that request. " + decision.TaskDescription, nil
	}

	worker, ok := o.workers.Lookup(decision.WorkerKind)
	if !ok {
		logger.Warn().Str("worker", string(decision.WorkerKind)).Msg("orchestrator: worker not available")
		return fmt.Sprintf("Worker %s is not available.", decision.WorkerKind), nil
	}

	return o.runLoop(ctx, worker, decision)
}

func (o *Orchestrator) runLoop(ctx context.Context, worker contractx.Worker, decision contractx.RoutingDecision) (string, error) {
	feedback := ""

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		logger := zerolog.Ctx(ctx).With().
			Str("worker", string(decision.WorkerKind)).
			Int("attempt", attempt).
			Int("max_attempts", o.maxAttempts).
			Logger()
		logger.Info().Msgf("orchestrator: attempt %d/%d", attempt, o.maxAttempts)

		result := worker.Execute(ctx, contractx.WorkerRequest{
			TaskDescription: decision.TaskDescription,
			Parameters:      decision.Parameters,
			Feedback:        feedback,
		})
		if !result.Success {
			logger.Warn().Str("error", result.Error).Msg("orchestrator: worker failed")
			return "Error: " + result.Error, nil
		}

		eval, err := o.evaluator.Evaluate(ctx, contractx.EvaluateRequest{
			WorkerOutput:    result.Output,
			TaskDescription: decision.TaskDescription,
			SuccessCriteria: decision.SuccessCriteria,
		})
		if err != nil {
			logger.Error().Err(err).Msg("orchestrator: evaluation failed")
			return "", err
		}

		logger.Info().
			Bool("passed", eval.Passed).
			Int("score", eval.Score).
			Msg("orchestrator: evaluation")

		if eval.Passed {
			return result.Output, nil
		}

		if attempt == o.maxAttempts {
			logger.Warn().Str("feedback", logx.Preview(eval.Feedback, 120)).Msg("orchestrator: returning degraded result")
			return degraded(result.Output, o.maxAttempts, eval.Feedback), nil
		}

		feedback = eval.Feedback + "\n\nSuggestions: " + eval.Suggestions
	}

	// maxAttempts is always >= 1, so the loop returns before reaching here.
	return "", fmt.Errorf("%w: retry loop exited without a result", contractx.ErrValidation)
}

func degraded(output string, attempts int, feedback string) string {
	return fmt.Sprintf(
		"%s\n\n[Note: Response may not fully meet quality criteria after %d attempts. Evaluator feedback: %s]",
		output, attempts, feedback,
	)
}
