// Package workers holds the task executors the orchestrator dispatches to.
package workers

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// Table maps worker kinds to executors. It is built once and read concurrently.
type Table struct {
	workers map[contractx.WorkerKind]contractx.Worker
}

// NewTable copies entries, dropping NONE and nil workers. Every worker is wrapped
// so that a panic becomes a failed result.
func NewTable(entries map[contractx.WorkerKind]contractx.Worker) *Table {
	workers := make(map[contractx.WorkerKind]contractx.Worker, len(entries))
	for kind, w := range entries {
		if w == nil || kind == contractx.WorkerNone {
			continue
		}
		workers[kind] = guard(kind, w)
	}
	return &Table{workers: workers}
}

// Default builds the SEARCH, EMAIL and GENERAL workers from the registry's completers.
func Default(reg contractx.Registry, searcher Searcher, mailer Mailer) *Table {
	return NewTable(map[contractx.WorkerKind]contractx.Worker{
		contractx.WorkerSearch:  NewSearch(reg.Search(), searcher),
		contractx.WorkerEmail:   NewEmail(reg.Email(), mailer),
		contractx.WorkerGeneral: NewGeneral(reg.General()),
	})
}

func (t *Table) Lookup(kind contractx.WorkerKind) (contractx.Worker, bool) {
	if t == nil {
		return nil, false
	}
	w, ok := t.workers[kind]
	return w, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.workers)
}

func guard(kind contractx.WorkerKind, w contractx.Worker) contractx.Worker {
	return contractx.WorkerFunc(func(ctx context.Context, req contractx.WorkerRequest) (res contractx.WorkerResult) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(ctx).Error().
					Str("worker", string(kind)).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("worker panicked")
				res = contractx.Failed(fmt.Sprintf("worker %s crashed: %v", kind, r))
			}
		}()
		return w.Execute(ctx, req)
	})
}
