package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

// MemoryStore is a process-local history store. Sessions past maxSessions are
// evicted least-recently-used first and idle sessions expire after ttl.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, []contractx.Turn]
	maxTurns int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(maxSessions, maxTurns int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &MemoryStore{
		sessions: expirable.NewLRU[string, []contractx.Turn](maxSessions, nil, ttl),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turn contractx.Turn) error {
	if err := validate(sessionID, turn); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.sessions.Get(sessionID)
	next := make([]contractx.Turn, 0, len(existing)+1)
	next = append(next, existing...)
	next = append(next, turn)
	if len(next) > s.maxTurns {
		next = next[len(next)-s.maxTurns:]
	}
	s.sessions.Add(sessionID, next)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, sessionID string, k int) ([]contractx.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	turns, _ := s.sessions.Get(sessionID)
	s.mu.Unlock()

	window := contractx.RecentTurns(turns, k)
	out := make([]contractx.Turn, len(window))
	copy(out, window)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	s.sessions.Remove(sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	return s.sessions.Len()
}

func (s *MemoryStore) Close() error {
	s.sessions.Purge()
	return nil
}
