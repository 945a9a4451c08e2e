package assistantnode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// FinalizeReply passes the reply through untouched; worker output is returned verbatim.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return GraphOutput{Reply: in.Reply, Route: in.Route}, nil
}
