package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

type turnRow struct {
	bun.BaseModel `bun:"table:conversation_turns,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// SQLStore persists turns in a relational table through bun.
type SQLStore struct {
	db *bun.DB
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore connects to Postgres for postgres:// DSNs and to SQLite otherwise,
// then creates the turns table when missing.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("history dsn is required")
	}

	var db *bun.DB
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	store := &SQLStore{db: db}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*turnRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create conversation_turns: %w", err)
	}
	_, err := s.db.NewCreateIndex().
		Model((*turnRow)(nil)).
		Index("conversation_turns_session_idx").
		Column("session_id", "id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create conversation_turns index: %w", err)
	}
	return nil
}

func (s *SQLStore) Append(ctx context.Context, sessionID string, turn contractx.Turn) error {
	if err := validate(sessionID, turn); err != nil {
		return err
	}
	row := &turnRow{
		SessionID: sessionID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (s *SQLStore) Recent(ctx context.Context, sessionID string, k int) ([]contractx.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	if k <= 0 {
		return nil, nil
	}

	var rows []turnRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		OrderExpr("id DESC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select turns: %w", err)
	}

	turns := make([]contractx.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = contractx.Turn{Role: contractx.Role(row.Role), Content: row.Content}
	}
	return turns, nil
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	_, err := s.db.NewDelete().Model((*turnRow)(nil)).Where("session_id = ?", sessionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	return nil
}

// Prune removes turns older than olderThan and returns how many were deleted.
func (s *SQLStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.NewDelete().Model((*turnRow)(nil)).Where("created_at < ?", cutoff).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune turns: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
