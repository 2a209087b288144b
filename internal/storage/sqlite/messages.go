package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
)

func (s *Store) AppendMessage(ctx context.Context, role core.Role, content string) (int64, error) {
	if role != core.RoleUser && role != core.RoleAssistant {
		return 0, fmt.Errorf("append message: unsupported role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_log (role, content, created_at, summarized) VALUES (?, ?, ?, 0)`,
		string(role), content, s.now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}
	return res.LastInsertId()
}

// RecentMessages returns the last n messages, oldest first.
func (s *Store) RecentMessages(ctx context.Context, n int) ([]core.StoredMessage, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at, summarized FROM conversation_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Store) UnsummarizedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_log WHERE summarized = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsummarized messages: %w", err)
	}
	return n, nil
}

// UnsummarizedMessages returns every message not yet folded into a summary,
// oldest first.
func (s *Store) UnsummarizedMessages(ctx context.Context) ([]core.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at, summarized FROM conversation_log WHERE summarized = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsummarized messages: %w", err)
	}
	return scanMessages(rows)
}

// MarkSummarized flags every message with id <= uptoID. Repeating it, or
// calling it with an older id, changes nothing.
func (s *Store) MarkSummarized(ctx context.Context, uptoID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE conversation_log SET summarized = 1 WHERE id <= ? AND summarized = 0`, uptoID)
	if err != nil {
		return fmt.Errorf("failed to mark messages summarized: %w", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]core.StoredMessage, error) {
	defer rows.Close()

	var msgs []core.StoredMessage
	for rows.Next() {
		var m core.StoredMessage
		var role string
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.CreatedAt, &m.Summarized); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = core.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
