package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
)

func (s *Store) InsertSummary(ctx context.Context, content string, fromID, toID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_summaries (content, source_from_id, source_to_id, created_at, incorporated)
		 VALUES (?, ?, ?, ?, 0)`,
		content, fromID, toID, s.now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert summary: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UnincorporatedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_summaries WHERE incorporated = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unincorporated summaries: %w", err)
	}
	return n, nil
}

func (s *Store) UnincorporatedSummaries(ctx context.Context) ([]core.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, source_from_id, source_to_id, created_at, incorporated
		FROM memory_summaries WHERE incorporated = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unincorporated summaries: %w", err)
	}
	return scanSummaries(rows)
}

// MarkIncorporated flags every summary with id <= uptoID.
func (s *Store) MarkIncorporated(ctx context.Context, uptoID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE memory_summaries SET incorporated = 1 WHERE id <= ? AND incorporated = 0`, uptoID)
	if err != nil {
		return fmt.Errorf("failed to mark summaries incorporated: %w", err)
	}
	return nil
}

// ListSummaries returns the newest summaries first. limit <= 0 means all.
func (s *Store) ListSummaries(ctx context.Context, limit int) ([]core.Summary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, source_from_id, source_to_id, created_at, incorporated
		FROM memory_summaries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]core.Summary, error) {
	defer rows.Close()

	var out []core.Summary
	for rows.Next() {
		var sm core.Summary
		if err := rows.Scan(&sm.ID, &sm.Content, &sm.SourceFromID, &sm.SourceToID, &sm.CreatedAt, &sm.Incorporated); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
