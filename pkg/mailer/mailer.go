// Package mailer sends plain-text email through SendGrid.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrNotConfigured = errors.New("SENDGRID_API_KEY not configured")

type Config struct {
	APIKey    string `envconfig:"API_KEY" split_words:"true"`
	Host      string `envconfig:"HOST" split_words:"true" default:"https://api.sendgrid.com"`
	FromEmail string `envconfig:"FROM_EMAIL" split_words:"true" default:"assistant@chative.local"`
	FromName  string `envconfig:"FROM_NAME" split_words:"true" default:"Chative Assistant"`
}

type SendResult struct {
	StatusCode int
}

type Client struct {
	apiKey string
	host   string
	from   *mail.Email
}

func NewClient(cfg Config) *Client {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		host = "https://api.sendgrid.com"
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		host:   host,
		from:   mail.NewEmail(strings.TrimSpace(cfg.FromName), strings.TrimSpace(cfg.FromEmail)),
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Send delivers one plain-text message. A non-2xx reply is an error.
func (c *Client) Send(ctx context.Context, to, subject, body string) (SendResult, error) {
	if !c.Configured() {
		return SendResult{}, ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return SendResult{}, errors.New("recipient address is required")
	}

	message := mail.NewSingleEmail(c.from, subject, mail.NewEmail("", to), body, "")

	req := sendgrid.GetRequest(c.apiKey, "/v3/mail/send", c.host)
	req.Method = rest.Post
	client := &sendgrid.Client{Request: req}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return SendResult{}, fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return SendResult{StatusCode: resp.StatusCode}, fmt.Errorf("sendgrid status=%d body=%s", resp.StatusCode, resp.Body)
	}

	return SendResult{StatusCode: resp.StatusCode}, nil
}
