package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	llmx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/llm"
	promptx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/prompt"
)

type registryImpl struct {
	frontline  contractx.Completer
	classifier contractx.Classifier
	evaluator  contractx.Evaluator
	search     contractx.Completer
	email      contractx.Completer
	general    contractx.Completer
}

func (r *registryImpl) Frontline() contractx.Completer {
	return r.frontline
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Evaluator() contractx.Evaluator {
	return r.evaluator
}

func (r *registryImpl) Search() contractx.Completer {
	return r.search
}

func (r *registryImpl) Email() contractx.Completer {
	return r.email
}

func (r *registryImpl) General() contractx.Completer {
	return r.general
}

var roles = []contractx.AgentType{
	contractx.AgentTypeFrontline,
	contractx.AgentTypeOrchestrator,
	contractx.AgentTypeEvaluator,
	contractx.AgentTypeSearch,
	contractx.AgentTypeEmail,
	contractx.AgentTypeGeneral,
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	models := make(map[contractx.AgentType]einomodel.BaseChatModel, len(roles))
	for _, role := range roles {
		m, err := cfg.BuilderFor(role).New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, role, err)
		}
		models[role] = m
	}

	reg, err := newRegistry(ctx, promptx.LoadPromptSet(), models)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func newRegistry(
	ctx context.Context,
	prompts promptx.PromptSet,
	models map[contractx.AgentType]einomodel.BaseChatModel,
) (*registryImpl, error) {
	for _, role := range roles {
		if models[role] == nil {
			return nil, fmt.Errorf("%w: no model for %s", contractx.ErrValidation, role)
		}
	}

	classifier, err := newClassifier(ctx, models[contractx.AgentTypeOrchestrator], prompts.Orchestrator)
	if err != nil {
		return nil, err
	}
	evaluator, err := newEvaluator(ctx, models[contractx.AgentTypeEvaluator], prompts.Evaluator)
	if err != nil {
		return nil, err
	}

	frontline, err := newTextAgent(ctx, contractx.AgentTypeFrontline, models[contractx.AgentTypeFrontline], prompts.Frontline)
	if err != nil {
		return nil, err
	}
	search, err := newTextAgent(ctx, contractx.AgentTypeSearch, models[contractx.AgentTypeSearch], prompts.Search)
	if err != nil {
		return nil, err
	}
	email, err := newTextAgent(ctx, contractx.AgentTypeEmail, models[contractx.AgentTypeEmail], prompts.Email)
	if err != nil {
		return nil, err
	}
	general, err := newTextAgent(ctx, contractx.AgentTypeGeneral, models[contractx.AgentTypeGeneral], prompts.General)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		frontline:  frontline,
		classifier: classifier,
		evaluator:  evaluator,
		search:     search,
		email:      email,
		general:    general,
	}, nil
}
