package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/serpapi"
)

const (
	defaultNumResults = 5
	// SerpAPI returns at most 100 organic results per page.
	maxNumResults = 100
)

type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]serpapi.Result, error)
}

type searchWorker struct {
	completer contractx.Completer
	searcher  Searcher
}

func NewSearch(completer contractx.Completer, searcher Searcher) contractx.Worker {
	return &searchWorker{completer: completer, searcher: searcher}
}

func (w *searchWorker) Execute(ctx context.Context, req contractx.WorkerRequest) contractx.WorkerResult {
	logger := zerolog.Ctx(ctx).With().Str("worker", string(contractx.WorkerSearch)).Logger()
	logger.Info().
		Str("task", logx.Preview(req.TaskDescription, 80)).
		Bool("has_feedback", req.Feedback != "").
		Msg("search worker: starting")

	query := stringParam(req.Parameters, "query")
	if query == "" {
		query = req.TaskDescription
	}
	n, err := positiveIntParam(req.Parameters, "num_results", defaultNumResults)
	if err != nil {
		return contractx.Failed(err.Error())
	}
	if n > maxNumResults {
		logger.Warn().Int("requested", n).Int("max", maxNumResults).Msg("search worker: capping num_results")
		n = maxNumResults
	}
	if w.searcher == nil {
		return contractx.Failed(serpapi.ErrNotConfigured.Error())
	}

	logger.Info().Str("query", query).Int("num_results", n).Msg("search worker: searching")
	results, err := w.searcher.Search(ctx, query, n)
	if err != nil {
		logger.Error().Err(err).Msg("search worker: search backend failed")
		return contractx.Failed(err.Error())
	}
	logger.Info().Int("results", len(results)).Msg("search worker: got results")

	input := fmt.Sprintf(
		"Task: %s\n\nSearch Results:\n%s\n\n%s\n\nSynthesize these results into a clear, informative response.",
		req.TaskDescription, FormatResults(results), feedbackSection(req.Feedback),
	)

	out, err := w.completer.Complete(ctx, input)
	if err != nil {
		logger.Error().Err(err).Msg("search worker: synthesis failed")
		return contractx.Failed(err.Error())
	}
	return contractx.Succeeded(out)
}

// FormatResults renders results as numbered blocks separated by blank lines.
func FormatResults(results []serpapi.Result) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("%d. %s\n   %s\n   %s", i+1, r.Title, r.Link, r.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}
