package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
)

func (s *Store) GetBaseMemory(ctx context.Context) (string, error) {
	info, err := s.BaseMemoryInfo(ctx)
	return info.Content, err
}

func (s *Store) BaseMemoryInfo(ctx context.Context) (core.BaseMemory, error) {
	var bm core.BaseMemory
	err := s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM memory_base WHERE id = 1`).Scan(&bm.Content, &bm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BaseMemory{}, nil
	}
	if err != nil {
		return core.BaseMemory{}, fmt.Errorf("failed to read base memory: %w", err)
	}
	return bm, nil
}

// SetBaseMemory overwrites the singleton document.
func (s *Store) SetBaseMemory(ctx context.Context, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_base (id, content, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		content, s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write base memory: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (core.Stats, error) {
	var st core.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM conversation_log),
			(SELECT COUNT(*) FROM conversation_log WHERE summarized = 0),
			(SELECT COUNT(*) FROM memory_facts),
			(SELECT COUNT(*) FROM memory_summaries),
			(SELECT COUNT(*) FROM memory_summaries WHERE incorporated = 0),
			COALESCE((SELECT LENGTH(content) FROM memory_base WHERE id = 1), 0)`,
	).Scan(&st.Messages, &st.UnsummarizedMessages, &st.Facts, &st.Summaries, &st.UnincorporatedSummaries, &st.BaseMemoryChars)
	if err != nil {
		return core.Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return st, nil
}
