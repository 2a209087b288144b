package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/sandevgo/lobug/internal/core"
)

// Hash is an offline embedder. Every word seeds a pseudo-random direction;
// a text is the normalized sum of its words, so texts sharing words end up
// close together. Identical texts always map to the same vector.
type Hash struct {
	dim int
}

var _ core.Embedder = (*Hash)(nil)

func NewHash(dim int) *Hash {
	return &Hash{dim: dim}
}

func (h *Hash) Dims() int {
	return h.dim
}

func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, h.dim)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		f := fnv.New64a()
		f.Write([]byte(w))
		seed := f.Sum64()
		for i := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[i] += float64(int64(seed)) / math.MaxInt64
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dim)
	for i, v := range vec {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out, nil
}
