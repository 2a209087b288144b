package sqlite

import (
	"fmt"

	"github.com/sandevgo/lobug/internal/core"
	vec "github.com/sandevgo/lobug/pkg/sqlite"
)

// serializeVector checks the vector against the store dimension and packs it
// for sqlite-vec.
func (s *Store) serializeVector(v []float32) ([]byte, error) {
	if len(v) != s.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(v), s.dim)
	}
	blob, err := vec.SerializeVector(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return blob, nil
}
