package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) InsertFact(ctx context.Context, content string, embedding []float32, source string, factType core.FactType) (int64, error) {
	blob, err := s.serializeVector(embedding)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := s.insertFact(ctx, tx, content, blob, source, factType)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// insertFact writes the metadata row, then the vector under the same rowid.
func (s *Store) insertFact(ctx context.Context, ex execer, content string, blob []byte, source string, factType core.FactType) (int64, error) {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO memory_facts (content, source, fact_type, created_at) VALUES (?, ?, ?, ?)`,
		content, source, string(factType), s.now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = ex.ExecContext(ctx, `INSERT INTO memory_facts_vec (rowid, embedding) VALUES (?, ?)`, id, blob)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fact vector: %w", err)
	}
	return id, nil
}

func deleteFact(ctx context.Context, ex execer, id int64) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM memory_facts_vec WHERE rowid = ?`, id); err != nil {
		return fmt.Errorf("failed to delete fact vector %d: %w", id, err)
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM memory_facts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete fact %d: %w", id, err)
	}
	return nil
}

// DeleteFact removes a fact. A missing id is not an error.
func (s *Store) DeleteFact(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteFact(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceFact deletes oldID and inserts the new fact atomically.
func (s *Store) ReplaceFact(ctx context.Context, oldID int64, content string, embedding []float32, source string, factType core.FactType) (int64, error) {
	blob, err := s.serializeVector(embedding)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := deleteFact(ctx, tx, oldID); err != nil {
		return 0, err
	}

	id, err := s.insertFact(ctx, tx, content, blob, source, factType)
	if err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// SearchFacts returns up to k facts nearest to query by cosine distance,
// closest first, using the vec0 index.
func (s *Store) SearchFacts(ctx context.Context, query []float32, k int) ([]core.FactMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	blob, err := s.serializeVector(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH knn AS (
			SELECT rowid, distance
			FROM memory_facts_vec
			WHERE embedding MATCH ? AND k = ?
		)
		SELECT f.id, f.content, f.source, f.fact_type, f.created_at, knn.distance
		FROM knn
		JOIN memory_facts f ON f.id = knn.rowid
		ORDER BY knn.distance ASC, f.id DESC`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("fact search failed: %w", err)
	}
	defer rows.Close()

	var out []core.FactMatch
	for rows.Next() {
		var m core.FactMatch
		var ft string
		if err := rows.Scan(&m.ID, &m.Content, &m.Source, &ft, &m.CreatedAt, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		m.Type = core.FactType(ft)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListFacts returns the newest facts first. limit <= 0 means all.
func (s *Store) ListFacts(ctx context.Context, limit int) ([]core.Fact, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, source, fact_type, created_at FROM memory_facts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var out []core.Fact
	for rows.Next() {
		var f core.Fact
		var ft string
		if err := rows.Scan(&f.ID, &f.Content, &f.Source, &ft, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		f.Type = core.FactType(ft)
		out = append(out, f)
	}
	return out, rows.Err()
}
