package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/qstash"
)

type Publisher interface {
	Publish(ctx context.Context, destination string, payload any) (*qstash.PublishResponse, error)
}

type MirrorEvent struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	SentAt    time.Time `json:"sent_at"`
}

type mirror struct {
	publisher   Publisher
	destination string
}

// wrap publishes after the primary delivery. Publish failures are logged, never returned.
func (m *mirror) wrap(primary contractx.ReplySink) contractx.ReplySink {
	return contractx.ReplySinkFunc(func(ctx context.Context, sessionID string, text string) error {
		err := primary.Deliver(ctx, sessionID, text)

		res, pubErr := m.publisher.Publish(ctx, m.destination, MirrorEvent{
			SessionID: sessionID,
			Reply:     text,
			SentAt:    time.Now().UTC(),
		})
		logger := zerolog.Ctx(ctx)
		if pubErr != nil {
			logger.Warn().Err(pubErr).Str("destination", m.destination).Msg("mirror: publish failed")
		} else if res != nil {
			logger.Debug().Str("message_id", res.MessageID).Msg("mirror: published")
		}
		return err
	})
}
