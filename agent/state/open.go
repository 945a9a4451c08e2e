package state

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendUpstash Backend = "upstash"
	BackendSQL     Backend = "sql"
)

// Config is loaded with the HISTORY prefix.
type Config struct {
	Backend     Backend       `envconfig:"BACKEND" split_words:"true" default:"memory"`
	MaxSessions int           `envconfig:"MAX_SESSIONS" split_words:"true" default:"10000"`
	MaxTurns    int           `envconfig:"MAX_TURNS" split_words:"true" default:"50"`
	TTL         time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	DSN         string        `envconfig:"DSN" split_words:"true" default:"file:chative.db?_pragma=busy_timeout(5000)"`
	KeyPrefix   string        `envconfig:"KEY_PREFIX" split_words:"true" default:"chative:history:"`
}

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg Config, upstash UpstashRedisConfig) (Store, error) {
	switch Backend(strings.ToLower(string(cfg.Backend))) {
	case "", BackendMemory:
		return NewMemoryStore(cfg.MaxSessions, cfg.MaxTurns, cfg.TTL), nil
	case BackendUpstash:
		return NewUpstashRedisStore(upstash,
			WithKeyPrefix(cfg.KeyPrefix),
			WithTTL(cfg.TTL),
			WithMaxTurns(cfg.MaxTurns),
		)
	case BackendSQL:
		return OpenSQLStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported history backend=%q", cfg.Backend)
	}
}
