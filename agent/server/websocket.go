package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/assistant"
	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	logx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger"
)

// InboundFrame is one client message. Message is text or a list of {role, content}.
type InboundFrame struct {
	UUID    string          `json:"uuid"`
	Message json.RawMessage `json:"message"`
}

type streamFrame struct {
	Text string `json:"on_chat_model_stream"`
}

type endFrame struct {
	End bool `json:"on_chat_model_end"`
}

const (
	progressText   = "Processing your request..."
	replySeparator = "\n\n"
)

// wsSink writes the reply as one stream frame followed by the end frame.
// After Progress the reply is preceded by a separator frame.
type wsSink struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	inProgress   bool
}

func (w *wsSink) Progress() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.write(streamFrame{Text: progressText}); err != nil {
		return err
	}
	w.inProgress = true
	return nil
}

func (w *wsSink) Deliver(ctx context.Context, sessionID string, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inProgress {
		w.inProgress = false
		if err := w.write(streamFrame{Text: replySeparator}); err != nil {
			return err
		}
	}
	if err := w.write(streamFrame{Text: text}); err != nil {
		return err
	}
	return w.write(endFrame{End: true})
}

func (w *wsSink) write(v any) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("ws: upgrade failed")
		return err
	}
	defer conn.Close()

	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	connID := newSessionID()
	ws := &wsSink{conn: conn, writeTimeout: s.cfg.WriteTimeout}
	sink := s.sink(ws)
	ctx := c.Request().Context()

	log.Info().Str("conn_id", connID).Msg("ws: connected")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", connID).Msg("ws: read failed")
			}
			return nil
		}

		frame := parseFrame(data)
		sessionID := strings.TrimSpace(frame.UUID)
		if sessionID == "" {
			sessionID = connID
		}
		payload, err := decodePayload(frame.Message)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("ws: unsupported message, skipping")
			continue
		}

		if _, err := assistant.ExtractUserInput(payload); err != nil {
			log.Warn().Str("session_id", sessionID).Msg("ws: empty user input, skipping")
			continue
		}

		msgCtx := logx.WithSession(ctx, sessionID)
		if err := ws.Progress(); err != nil {
			zerolog.Ctx(msgCtx).Warn().Err(err).Msg("ws: progress frame failed")
			return nil
		}
		if _, err := s.responder.Respond(msgCtx, assistant.Inbound{SessionID: sessionID, Payload: payload}, sink); err != nil {
			if errors.Is(err, contractx.ErrNoUserInput) {
				continue
			}
			zerolog.Ctx(msgCtx).Error().Err(err).Msg("ws: respond failed")
		}
	}
}

// parseFrame accepts a JSON frame, a bare JSON message, or plain text.
func parseFrame(data []byte) InboundFrame {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err == nil {
		return frame
	}
	if json.Valid(data) {
		return InboundFrame{Message: data}
	}
	text, _ := json.Marshal(string(data))
	return InboundFrame{Message: text}
}
