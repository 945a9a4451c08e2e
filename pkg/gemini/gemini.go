// Package gemini adapts the Gemini generate-content API to an eino chat model.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
	Temperature     float32
	Timeout         time.Duration
}

func (c *Config) New(ctx context.Context) (model.BaseChatModel, error) {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if v := strings.TrimRight(c.BaseURL, "/"); v != "" {
		cc.HTTPOptions.BaseURL = v
	}
	if c.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: c.Timeout}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &ChatModel{
		models:          client.Models,
		model:           strings.TrimSpace(c.Model),
		maxOutputTokens: c.MaxOutputTokens,
		temperature:     c.Temperature,
	}, nil
}

type ChatModel struct {
	models          *genai.Models
	model           string
	maxOutputTokens int
	temperature     float32
}

var _ model.BaseChatModel = (*ChatModel)(nil)

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Temperature: &m.temperature,
		MaxTokens:   &m.maxOutputTokens,
		Model:       &m.model,
	}, opts...)

	system, contents := convertMessages(input)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: at least one user or model message is required")
	}

	conf := &genai.GenerateContentConfig{}
	if system != "" {
		conf.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if options.Temperature != nil {
		conf.Temperature = genai.Ptr(*options.Temperature)
	}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		conf.MaxOutputTokens = int32(*options.MaxTokens)
	}

	resp, err := m.models.GenerateContent(ctx, *options.Model, contents, conf)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}

	return schema.AssistantMessage(resp.Text(), nil), nil
}

// Stream delivers the full completion as a single chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func convertMessages(input []*schema.Message) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), out
}
