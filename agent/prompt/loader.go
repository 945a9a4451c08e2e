package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/frontline.txt
	frontlineRaw string

	//go:embed template/orchestrator.txt
	orchestratorRaw string

	//go:embed template/evaluator.txt
	evaluatorRaw string

	//go:embed template/search.txt
	searchRaw string

	//go:embed template/email.txt
	emailRaw string

	//go:embed template/general.txt
	generalRaw string
)

// PromptSet holds the system prompts, one per agent role.
// Templates use FString syntax, so literal braces are doubled.
type PromptSet struct {
	Frontline    string
	Orchestrator string
	Evaluator    string
	Search       string
	Email        string
	General      string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Frontline:    strings.TrimSpace(frontlineRaw),
		Orchestrator: strings.TrimSpace(orchestratorRaw),
		Evaluator:    strings.TrimSpace(evaluatorRaw),
		Search:       strings.TrimSpace(searchRaw),
		Email:        strings.TrimSpace(emailRaw),
		General:      strings.TrimSpace(generalRaw),
	}
}
