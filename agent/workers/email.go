package workers

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/mailer"
)

const notSpecified = "Not specified"

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (mailer.SendResult, error)
}

type emailWorker struct {
	completer contractx.Completer
	mailer    Mailer
}

func NewEmail(completer contractx.Completer, m Mailer) contractx.Worker {
	return &emailWorker{completer: completer, mailer: m}
}

func (w *emailWorker) Execute(ctx context.Context, req contractx.WorkerRequest) contractx.WorkerResult {
	logger := zerolog.Ctx(ctx).With().Str("worker", string(contractx.WorkerEmail)).Logger()

	to := stringParam(req.Parameters, "to")
	subject := stringParam(req.Parameters, "subject")
	body := stringParam(req.Parameters, "body")

	logger.Info().
		Str("task", logx.Preview(req.TaskDescription, 80)).
		Str("to", to).
		Bool("has_feedback", req.Feedback != "").
		Msg("email worker: starting")

	if to == "" {
		return contractx.Failed("recipient address (to) is required")
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return contractx.Failed(fmt.Sprintf("invalid recipient address %q: %v", to, err))
	}
	if subject == "" {
		subject = logx.Preview(strings.TrimSpace(req.TaskDescription), 78)
	}

	if w.mailer == nil {
		return contractx.Failed(mailer.ErrNotConfigured.Error())
	}

	if body == "" {
		drafted, err := w.completer.Complete(ctx, draftInput(req, to, subject))
		if err != nil {
			logger.Error().Err(err).Msg("email worker: drafting failed")
			return contractx.Failed(err.Error())
		}
		body = strings.TrimSpace(drafted)
	}

	logger.Info().Str("to", addr.Address).Msg("email worker: sending")
	res, err := w.mailer.Send(ctx, addr.Address, subject, body)
	if err != nil {
		logger.Error().Err(err).Msg("email worker: send failed")
		return contractx.Failed(err.Error())
	}

	logger.Info().Int("status", res.StatusCode).Msg("email worker: sent")
	return contractx.Succeeded(fmt.Sprintf("Email sent successfully to %s\nSubject: %s\nStatus: %d", to, subject, res.StatusCode))
}

func draftInput(req contractx.WorkerRequest, to, subject string) string {
	orDefault := func(s string) string {
		if s == "" {
			return notSpecified
		}
		return s
	}
	return fmt.Sprintf(
		"Task: %s\n\nParameters provided:\n- To: %s\n- Subject: %s\n\n%s\n\nWrite the body of this email.",
		req.TaskDescription, orDefault(to), orDefault(subject), feedbackSection(req.Feedback),
	)
}
