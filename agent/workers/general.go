package workers

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

type generalWorker struct {
	completer contractx.Completer
}

func NewGeneral(completer contractx.Completer) contractx.Worker {
	return &generalWorker{completer: completer}
}

func (w *generalWorker) Execute(ctx context.Context, req contractx.WorkerRequest) contractx.WorkerResult {
	logger := zerolog.Ctx(ctx).With().Str("worker", string(contractx.WorkerGeneral)).Logger()
	logger.Info().
		Str("task", logx.Preview(req.TaskDescription, 80)).
		Bool("has_feedback", req.Feedback != "").
		Msg("general worker: starting")

	input := req.TaskDescription
	if req.Feedback != "" {
		input += "\n\n" + feedbackSection(req.Feedback)
	}

	out, err := w.completer.Complete(ctx, input)
	if err != nil {
		logger.Error().Err(err).Msg("general worker: completion failed")
		return contractx.Failed(err.Error())
	}
	return contractx.Succeeded(out)
}
