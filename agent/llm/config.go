package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	anthropicx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/anthropic"
	geminix "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/gemini"
	openrouterx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/openrouter"
)

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGemini     Provider = "gemini"
)

// ModelBuilder creates the chat model backing one agent role.
type ModelBuilder interface {
	New(ctx context.Context) (einomodel.BaseChatModel, error)
}

// Config is loaded with the LLM prefix. APIKey is optional at load time;
// Configured reports whether requests can be served.
type Config struct {
	Provider           Provider      `envconfig:"PROVIDER" split_words:"true" default:"openrouter"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	FrontlineModel          string  `envconfig:"FRONTLINE_MODEL" split_words:"true"`
	OrchestratorModel       string  `envconfig:"ORCHESTRATOR_MODEL" split_words:"true"`
	EvaluatorModel          string  `envconfig:"EVALUATOR_MODEL" split_words:"true"`
	WorkerModel             string  `envconfig:"WORKER_MODEL" split_words:"true"`
	FrontlineTemperature    float32 `envconfig:"FRONTLINE_TEMPERATURE" split_words:"true" default:"-1"`
	OrchestratorTemperature float32 `envconfig:"ORCHESTRATOR_TEMPERATURE" split_words:"true" default:"0"`
	EvaluatorTemperature    float32 `envconfig:"EVALUATOR_TEMPERATURE" split_words:"true" default:"0"`
	WorkerTemperature       float32 `envconfig:"WORKER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Configured() {
		return fmt.Errorf("%w: LLM_API_KEY is not configured", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.Provider {
	case ProviderOpenRouter, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("%w: unsupported llm provider=%q", contractx.ErrValidation, c.Provider)
	}
	return nil
}

// ModelFor resolves the model name and temperature for an agent role.
// Negative role temperatures fall back to the default temperature.
func (c Config) ModelFor(agentType contractx.AgentType) (string, float32) {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agentType {
	case contractx.AgentTypeFrontline:
		override(c.FrontlineModel, c.FrontlineTemperature)
	case contractx.AgentTypeOrchestrator:
		override(c.OrchestratorModel, c.OrchestratorTemperature)
	case contractx.AgentTypeEvaluator:
		override(c.EvaluatorModel, c.EvaluatorTemperature)
	case contractx.AgentTypeSearch, contractx.AgentTypeEmail, contractx.AgentTypeGeneral:
		override(c.WorkerModel, c.WorkerTemperature)
	}
	return modelName, temp
}

func (c Config) BuilderFor(agentType contractx.AgentType) ModelBuilder {
	modelName, temp := c.ModelFor(agentType)
	maxTokens := c.MaxCompletionToken

	switch c.Provider {
	case ProviderAnthropic:
		return &anthropicx.Config{
			APIKey:      strings.TrimSpace(c.APIKey),
			Model:       modelName,
			MaxTokens:   maxTokens,
			Temperature: temp,
			Timeout:     c.Timeout,
		}
	case ProviderGemini:
		return &geminix.Config{
			APIKey:          strings.TrimSpace(c.APIKey),
			Model:           modelName,
			MaxOutputTokens: maxTokens,
			Temperature:     temp,
			Timeout:         c.Timeout,
		}
	default:
		return &openrouterx.Config{
			BaseURL:            strings.TrimSpace(c.BaseURL),
			APIKey:             strings.TrimSpace(c.APIKey),
			Model:              modelName,
			MaxCompletionToken: &maxTokens,
			Temperature:        temp,
			Timeout:            c.Timeout,
			SiteURL:            strings.TrimSpace(c.SiteURL),
			SiteName:           strings.TrimSpace(c.SiteName),
		}
	}
}

// Models lists every distinct model name the roles resolve to.
func (c Config) Models() []string {
	roles := []contractx.AgentType{
		contractx.AgentTypeFrontline,
		contractx.AgentTypeOrchestrator,
		contractx.AgentTypeEvaluator,
		contractx.AgentTypeGeneral,
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		m, _ := c.ModelFor(r)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
