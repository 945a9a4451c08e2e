package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/assistant"
	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

type ChatRequest struct {
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// collector keeps the delivered reply for the HTTP response.
type collector struct {
	reply string
}

func (c *collector) Deliver(ctx context.Context, sessionID string, text string) error {
	c.reply = text
	return nil
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	payload, err := decodePayload(req.Message)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "message must be text or a list of {role, content}"})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = newSessionID()
	}
	ctx := logx.WithSession(c.Request().Context(), sessionID)

	out := &collector{}
	reply, err := s.responder.Respond(ctx, assistant.Inbound{SessionID: sessionID, Payload: payload}, s.sink(out))
	switch {
	case errors.Is(err, contractx.ErrNoUserInput):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no user input in message"})
	case err != nil && reply == "":
		zerolog.Ctx(ctx).Error().Err(err).Msg("chat: respond failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	case err != nil:
		zerolog.Ctx(ctx).Warn().Err(err).Msg("chat: reply produced with errors")
	}

	return c.JSON(http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply})
}

func (s *Server) handleResetSession(c echo.Context) error {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "session id is required"})
	}
	ctx := logx.WithSession(c.Request().Context(), sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("chat: session reset failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	zerolog.Ctx(ctx).Info().Msg("chat: session reset")
	return c.NoContent(http.StatusNoContent)
}

// decodePayload keeps the message as bare text or as a decoded message list.
func decodePayload(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	switch payload.(type) {
	case string, []any:
		return payload, nil
	default:
		return nil, errors.New("unsupported message shape")
	}
}
