package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	got, err := store.redisKey("abc")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "chative:history:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "chative:history:abc")
	}
}

func TestUpstashRedisStoreRedisKeyEmptySession(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	_, err := store.redisKey("   ")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidSession", err)
	}
}

func TestUpstashRedisStoreAppendPipelinesPushTrimExpire(t *testing.T) {
	t.Parallel()

	var (
		gotPath     string
		gotCommands [][]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotCommands); err != nil {
			t.Errorf("decode pipeline: %v", err)
		}
		fmt.Fprint(w, `[{"result":1},{"result":"OK"},{"result":1}]`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(90*time.Minute),
		WithMaxTurns(20),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	turn := contractx.Turn{Role: contractx.RoleUser, Content: "hello"}
	if err := store.Append(context.Background(), "session-1", turn); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if gotPath != "/pipeline" {
		t.Fatalf("path = %q, want /pipeline", gotPath)
	}
	if len(gotCommands) != 3 {
		t.Fatalf("unexpected pipeline: %#v", gotCommands)
	}
	if gotCommands[0][0] != "RPUSH" || gotCommands[0][1] != "chative:history:session-1" {
		t.Fatalf("command[0] = %#v", gotCommands[0])
	}
	var stored contractx.Turn
	if err := json.Unmarshal([]byte(gotCommands[0][2].(string)), &stored); err != nil || stored != turn {
		t.Fatalf("pushed payload = %v (%v)", gotCommands[0][2], err)
	}
	if gotCommands[1][0] != "LTRIM" || gotCommands[1][2] != float64(-20) || gotCommands[1][3] != float64(-1) {
		t.Fatalf("command[1] = %#v", gotCommands[1])
	}
	if gotCommands[2][0] != "EXPIRE" || gotCommands[2][2] != float64(5400) {
		t.Fatalf("command[2] = %#v", gotCommands[2])
	}
}

func TestUpstashRedisStoreAppendWithoutTTLSkipsExpire(t *testing.T) {
	t.Parallel()

	var gotCommands [][]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&gotCommands)
		fmt.Fprint(w, `[{"result":1},{"result":"OK"}]`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(UpstashRedisConfig{URL: server.URL, Token: "token"}, WithTTL(0))
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	if err := store.Append(context.Background(), "s", contractx.Turn{Role: contractx.RoleAssistant, Content: "hi"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(gotCommands) != 2 {
		t.Fatalf("expected RPUSH+LTRIM only, got %#v", gotCommands)
	}
}

func TestUpstashRedisStoreAppendRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	store, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "https://example.upstash.io", Token: "token"})
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	err = store.Append(context.Background(), "s", contractx.Turn{Role: "system", Content: "x"})
	if !errors.Is(err, ErrInvalidTurn) {
		t.Fatalf("Append() error = %v, want ErrInvalidTurn", err)
	}
}

func TestUpstashRedisStoreRecentUsesLRange(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	first, _ := json.Marshal(contractx.Turn{Role: contractx.RoleUser, Content: "q"})
	second, _ := json.Marshal(contractx.Turn{Role: contractx.RoleAssistant, Content: "a"})
	result, _ := json.Marshal([]string{string(first), string(second)})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, result)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	turns, err := store.Recent(context.Background(), "session-2", 6)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(turns) != 2 || turns[0].Content != "q" || turns[1].Role != contractx.RoleAssistant {
		t.Fatalf("Recent() = %#v", turns)
	}

	if len(gotCommand) != 4 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "LRANGE" || gotCommand[1] != "chative:history:session-2" {
		t.Fatalf("command = %#v", gotCommand)
	}
	if gotCommand[2] != float64(-6) || gotCommand[3] != float64(-1) {
		t.Fatalf("range = %v..%v, want -6..-1", gotCommand[2], gotCommand[3])
	}
}

func TestUpstashRedisStoreRecentEmptyList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[]}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(UpstashRedisConfig{URL: server.URL, Token: "token"})
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	turns, err := store.Recent(context.Background(), "new-session", 4)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %#v", turns)
	}
}

func TestUpstashRedisStoreDeleteUsesSessionKey(t *testing.T) {
	t.Parallel()

	const wantKey = "custom:session-3"
	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":1}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithKeyPrefix("custom:"),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Delete(context.Background(), "session-3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(gotCommand) < 2 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "DEL" {
		t.Fatalf("command[0] = %v, want DEL", gotCommand[0])
	}
	if gotCommand[1] != wantKey {
		t.Fatalf("command[1] = %v, want %s", gotCommand[1], wantKey)
	}
}

func TestUpstashRedisStorePipelineErrorSurfaces(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"result":1},{"error":"WRONGTYPE Operation against a key holding the wrong kind of value"}]`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(UpstashRedisConfig{URL: server.URL, Token: "token"}, WithTTL(0))
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	if err := store.Append(context.Background(), "s", contractx.Turn{Role: contractx.RoleUser, Content: "x"}); err == nil {
		t.Fatal("expected pipeline error")
	}
}
