// Package serpapi queries the SerpAPI Google search endpoint over sendgrid/rest.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/rest"
)

var ErrNotConfigured = errors.New("SERPAPI_KEY not configured")

const defaultBaseURL = "https://serpapi.com"

type Config struct {
	Key     string        `envconfig:"KEY" split_words:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://serpapi.com"`
	Engine  string        `envconfig:"ENGINE" split_words:"true" default:"google"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type Client struct {
	baseURL string
	key     string
	engine  string
	api     *rest.Client
}

type searchResponse struct {
	OrganicResults []Result `json:"organic_results"`
	Error          string   `json:"error"`
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	engine := strings.TrimSpace(cfg.Engine)
	if engine == "" {
		engine = "google"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		key:     strings.TrimSpace(cfg.Key),
		engine:  engine,
		api:     &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.key != ""
}

// Search returns at most n organic results for query.
func (c *Client) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is empty")
	}
	if n <= 0 {
		return nil, fmt.Errorf("num_results must be > 0, got %d", n)
	}

	req := rest.Request{
		Method:  rest.Get,
		BaseURL: c.baseURL + "/search.json",
		Headers: map[string]string{"Accept": "application/json"},
		QueryParams: map[string]string{
			"engine":  c.engine,
			"q":       query,
			"api_key": c.key,
			"num":     strconv.Itoa(n),
		},
	}

	resp, err := c.api.SendWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal([]byte(resp.Body), &parsed); err != nil {
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("search http status=%d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search api error: %s", parsed.Error)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("search http status=%d", resp.StatusCode)
	}

	results := parsed.OrganicResults
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}
