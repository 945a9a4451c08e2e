package structured

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

func TestStripFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}\n":           `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```JSON\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"```json\n{\"a\":1}":      `{"a":1}`,
		"not json at all":         "not json at all",
		"```json\n```":            "",
	}
	for in, want := range cases {
		if got := StripFence(in); got != want {
			t.Fatalf("StripFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripFenceIsIdempotentOnPayload(t *testing.T) {
	t.Parallel()

	payload := `{"route_to_orchestrator":false,"response":"hi"}`
	once := StripFence("```json\n" + payload + "\n```")
	if once != payload {
		t.Fatalf("first strip = %q", once)
	}
	if twice := StripFence(once); twice != payload {
		t.Fatalf("second strip = %q", twice)
	}
}

func TestDecodeRoutingDecision(t *testing.T) {
	t.Parallel()

	out, err := Decode[contractx.RoutingDecision](
		"```json\n"+`{"worker_type":"SEARCH","task_description":"find go news","parameters":{"query":"golang"},"success_criteria":"three sources"}`+"\n```",
		RoutingDecisionSchema,
	)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.WorkerKind != contractx.WorkerSearch {
		t.Fatalf("unexpected worker kind: %s", out.WorkerKind)
	}
	if out.Parameters["query"] != "golang" {
		t.Fatalf("unexpected parameters: %#v", out.Parameters)
	}
}

func TestDecodeRejectsUnknownWorkerKind(t *testing.T) {
	t.Parallel()

	out, err := Decode[contractx.RoutingDecision](
		`{"worker_type":"CALENDAR","task_description":"x","parameters":{},"success_criteria":"y"}`,
		RoutingDecisionSchema,
	)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	if out.WorkerKind != "" || out.TaskDescription != "" {
		t.Fatalf("expected zero value on failure, got %#v", out)
	}
}

func TestDecodeRejectsMissingRequiredField(t *testing.T) {
	t.Parallel()

	_, err := Decode[contractx.RoutingDecision](
		`{"worker_type":"GENERAL","task_description":"x","parameters":{}}`,
		RoutingDecisionSchema,
	)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestDecodeEvaluationScoreRange(t *testing.T) {
	t.Parallel()

	_, err := Decode[contractx.EvaluationResult](
		`{"passed":true,"score":101,"feedback":"great"}`,
		EvaluationResultSchema,
	)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for score 101, got %v", err)
	}

	out, err := Decode[contractx.EvaluationResult](
		`{"passed":false,"score":0,"feedback":"missing sources","suggestions":"cite two"}`,
		EvaluationResultSchema,
	)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Passed || out.Score != 0 || out.Suggestions != "cite two" {
		t.Fatalf("unexpected evaluation: %#v", out)
	}
}

func TestDecodeEvaluationAcceptsIntegralFloatScore(t *testing.T) {
	t.Parallel()

	for _, score := range []string{"85", "85.0", "8.5e1", "850e-1"} {
		out, err := Decode[contractx.EvaluationResult](
			`{"passed":true,"score":`+score+`,"feedback":"ok"}`,
			EvaluationResultSchema,
		)
		if err != nil {
			t.Fatalf("Decode(score=%s) error = %v", score, err)
		}
		if !out.Passed || out.Score != 85 || out.Feedback != "ok" {
			t.Fatalf("Decode(score=%s) = %#v", score, out)
		}
	}
}

func TestDecodeEvaluationRejectsFractionalScore(t *testing.T) {
	t.Parallel()

	out, err := Decode[contractx.EvaluationResult](`{"passed":true,"score":85.5,"feedback":"ok"}`, EvaluationResultSchema)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	if out != (contractx.EvaluationResult{}) {
		t.Fatalf("expected zero value on failure, got %#v", out)
	}
}

func TestDecodeRejectsEmptyFeedback(t *testing.T) {
	t.Parallel()

	_, err := Decode[contractx.EvaluationResult](`{"passed":true,"score":90,"feedback":""}`, EvaluationResultSchema)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestDecodeRejectsProse(t *testing.T) {
	t.Parallel()

	_, err := Decode[contractx.EvaluationResult]("looks good to me", EvaluationResultSchema)
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}
