// Package server exposes the assistant over a websocket and a JSON endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/assistant"
	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// Config is loaded with the APP prefix.
type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	MaxMessageSize  int64         `envconfig:"MAX_MESSAGE_SIZE" split_words:"true" default:"65536"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"15s"`
}

type Responder interface {
	Respond(ctx context.Context, in assistant.Inbound, sink contractx.ReplySink) (string, error)
}

// SessionStore forgets a session's conversation history.
type SessionStore interface {
	Delete(ctx context.Context, sessionID string) error
}

type Option func(*Server)

// WithSessions enables DELETE /v1/sessions/:id backed by store.
func WithSessions(store SessionStore) Option {
	return func(s *Server) {
		s.sessions = store
	}
}

// WithMirror also publishes every delivered reply through publisher.
func WithMirror(publisher Publisher, destination string) Option {
	return func(s *Server) {
		if publisher != nil && strings.TrimSpace(destination) != "" {
			s.mirror = &mirror{publisher: publisher, destination: destination}
		}
	}
}

type Server struct {
	cfg       Config
	echo      *echo.Echo
	responder Responder
	mirror    *mirror
	sessions  SessionStore
	upgrader  websocket.Upgrader
}

func New(cfg Config, responder Responder, opts ...Option) (*Server, error) {
	if responder == nil {
		return nil, errors.New("responder is required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	s := &Server{
		cfg:       cfg,
		echo:      e,
		responder: responder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/ws", s.handleWebSocket)
	e.POST("/v1/chat", s.handleChat)
	if s.sessions != nil {
		e.DELETE("/v1/sessions/:id", s.handleResetSession)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("server: listening")
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// sink wraps the transport sink with the mirror when one is configured.
func (s *Server) sink(primary contractx.ReplySink) contractx.ReplySink {
	if s.mirror == nil {
		return primary
	}
	return s.mirror.wrap(primary)
}

func newSessionID() string {
	return uuid.NewString()
}
