package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type AgentType string

const (
	AgentTypeFrontline    AgentType = "frontline"
	AgentTypeOrchestrator AgentType = "orchestrator"
	AgentTypeEvaluator    AgentType = "evaluator"
	AgentTypeSearch       AgentType = "search"
	AgentTypeEmail        AgentType = "email"
	AgentTypeGeneral      AgentType = "general"
)

// WorkerKind tags the executor a request is routed to.
type WorkerKind string

const (
	WorkerSearch  WorkerKind = "SEARCH"
	WorkerEmail   WorkerKind = "EMAIL"
	WorkerGeneral WorkerKind = "GENERAL"
	WorkerNone    WorkerKind = "NONE"
)

func (k WorkerKind) Valid() bool {
	switch k {
	case WorkerSearch, WorkerEmail, WorkerGeneral, WorkerNone:
		return true
	default:
		return false
	}
}

// RoutingDecision is produced once per request by classification and never mutated.
type RoutingDecision struct {
	WorkerKind      WorkerKind     `json:"worker_type"`
	TaskDescription string         `json:"task_description"`
	Parameters      map[string]any `json:"parameters"`
	SuccessCriteria string         `json:"success_criteria"`
}

// WorkerResult carries Output when Success is true and Error otherwise.
type WorkerResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Succeeded(output string) WorkerResult {
	return WorkerResult{Success: true, Output: output}
}

func Failed(err string) WorkerResult {
	err = strings.TrimSpace(err)
	if err == "" {
		err = "worker failed without an error message"
	}
	return WorkerResult{Success: false, Error: err}
}

// EvaluationResult is the evaluator verdict. Passed is the only pass/fail signal;
// Score is informational and never used to re-derive Passed.
type EvaluationResult struct {
	Passed      bool   `json:"passed"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	Suggestions string `json:"suggestions,omitempty"`
}

// UnmarshalJSON accepts integral scores in any JSON number spelling (85, 85.0, 8.5e1).
func (r *EvaluationResult) UnmarshalJSON(data []byte) error {
	type plain EvaluationResult
	var raw struct {
		plain
		Score json.Number `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = EvaluationResult(raw.plain)
	r.Score = 0
	if raw.Score == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw.Score.String(), 10, 32); err == nil {
		r.Score = int(n)
		return nil
	}
	f, err := raw.Score.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("score must be a whole number, got %s", raw.Score)
	}
	r.Score = int(f)
	return nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RecentTurns returns the last k turns of history without copying the backing array.
func RecentTurns(history []Turn, k int) []Turn {
	if k <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= k {
		return history
	}
	return history[len(history)-k:]
}

// RenderHistory formats turns one per line as "ROLE: content".
func RenderHistory(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, strings.ToUpper(string(t.Role))+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

type TriageResult struct {
	RouteToOrchestrator bool
	// Payload is the direct answer when not routed, or the routing reason when routed.
	Payload string
}

type ClassifyRequest struct {
	UserInput string
	History   []Turn
}

type EvaluateRequest struct {
	WorkerOutput    string
	TaskDescription string
	SuccessCriteria string
}

type WorkerRequest struct {
	TaskDescription string
	Parameters      map[string]any
	// Feedback is empty on the first attempt.
	Feedback string
}
