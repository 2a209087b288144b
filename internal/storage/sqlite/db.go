package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/log"
	vec "github.com/sandevgo/lobug/pkg/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const metaEmbeddingDim = "embedding_dim"

// Store is the single SQLite-backed home of every memory tier.
// Writes are serialized by mu; reads go straight to the pool.
type Store struct {
	db  *sql.DB
	dim int
	mu  sync.Mutex
	now func() time.Time
}

var (
	_ core.MemoryStore     = (*Store)(nil)
	_ core.MemoryInspector = (*Store)(nil)
)

// Open creates or opens the database at path, applies migrations, pins the
// embedding dimension and makes sure the base memory row exists.
// Every failure wraps core.ErrStoreUnavailable.
func Open(ctx context.Context, path string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", core.ErrStoreUnavailable, dim)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStoreUnavailable, err)
	}

	db, err := sql.Open(vec.DriverName, path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", core.ErrStoreUnavailable, err)
	}

	s := &Store{db: db, dim: dim, now: func() time.Time { return time.Now().UTC() }}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	log.FromCtx(ctx).Debug().Str("path", path).Int("dim", dim).Msg("memory store ready")
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := migrate(ctx, s.db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := s.pinDimension(ctx); err != nil {
		return err
	}
	if err := s.createVectorIndex(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO memory_base (id, content, updated_at) VALUES (1, '', ?)`, s.now())
	if err != nil {
		return fmt.Errorf("ensure base memory: %w", err)
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	log.LogMigrations(ctx, results)
	if err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

// pinDimension records the dimension on first open and rejects a different
// one afterwards.
func (s *Store) pinDimension(ctx context.Context) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, metaEmbeddingDim).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO store_meta (key, value) VALUES (?, ?)`, metaEmbeddingDim, strconv.Itoa(s.dim))
		if err != nil {
			return fmt.Errorf("persist embedding dimension: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read embedding dimension: %w", err)
	}

	stored, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("corrupt embedding dimension %q: %w", raw, err)
	}
	if stored != s.dim {
		return fmt.Errorf("%w: store was created with %d, configured %d", core.ErrDimensionMismatch, stored, s.dim)
	}
	return nil
}

// createVectorIndex creates the vec0 table holding fact embeddings. Its rowid
// is the memory_facts id. The dimension is fixed here, so it runs after
// pinDimension.
func (s *Store) createVectorIndex(ctx context.Context) error {
	ddl := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_facts_vec USING vec0(embedding float[%d] distance_metric=cosine)`,
		s.dim,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create fact vector index: %w", err)
	}
	return nil
}

func (s *Store) Dim() int {
	return s.dim
}

func (s *Store) Close() error {
	return s.db.Close()
}
