package contract

import "context"

// Completer is the free-text completion capability.
type Completer interface {
	Complete(ctx context.Context, input string) (string, error)
}

type CompleterFunc func(ctx context.Context, input string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, input string) (string, error) {
	return f(ctx, input)
}

type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (RoutingDecision, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (EvaluationResult, error)
}

// Worker never returns an error: every failure is reported as a failed WorkerResult.
type Worker interface {
	Execute(ctx context.Context, req WorkerRequest) WorkerResult
}

type WorkerFunc func(ctx context.Context, req WorkerRequest) WorkerResult

func (f WorkerFunc) Execute(ctx context.Context, req WorkerRequest) WorkerResult {
	return f(ctx, req)
}

type Registry interface {
	Frontline() Completer
	Classifier() Classifier
	Evaluator() Evaluator
	Search() Completer
	Email() Completer
	General() Completer
}

type ReplySink interface {
	Deliver(ctx context.Context, sessionID string, text string) error
}

type ReplySinkFunc func(ctx context.Context, sessionID string, text string) error

func (f ReplySinkFunc) Deliver(ctx context.Context, sessionID string, text string) error {
	return f(ctx, sessionID, text)
}
