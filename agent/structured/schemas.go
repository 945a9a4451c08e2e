package structured

const routingDecisionSchema = `{
  "type": "object",
  "required": ["worker_type", "task_description", "parameters", "success_criteria"],
  "properties": {
    "worker_type": {"type": "string", "enum": ["SEARCH", "EMAIL", "GENERAL", "NONE"]},
    "task_description": {"type": "string"},
    "parameters": {"type": "object"},
    "success_criteria": {"type": "string"}
  }
}`

const evaluationResultSchema = `{
  "type": "object",
  "required": ["passed", "score", "feedback"],
  "properties": {
    "passed": {"type": "boolean"},
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "feedback": {"type": "string", "minLength": 1},
    "suggestions": {"type": "string"}
  }
}`

var (
	RoutingDecisionSchema  = MustCompile("routing_decision", routingDecisionSchema)
	EvaluationResultSchema = MustCompile("evaluation_result", evaluationResultSchema)
)
