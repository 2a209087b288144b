package memory

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

const testDim = 4

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "memory.db"), testDim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// scriptedChat answers with a routing func, falling back to a fixed reply.
type scriptedChat struct {
	mu    sync.Mutex
	route func(msgs []core.Message) (string, error)
	reply string
	err   error
	calls [][]core.Message
}

func (c *scriptedChat) Chat(_ context.Context, msgs []core.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, msgs)
	if c.route != nil {
		return c.route(msgs)
	}
	return c.reply, c.err
}

func (c *scriptedChat) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// isKind reports which prompt a chat call carries.
func isKind(msgs []core.Message, prefix string) bool {
	return len(msgs) > 0 && strings.HasPrefix(msgs[0].Content, prefix)
}

func isExtraction(msgs []core.Message) bool { return isKind(msgs, "You pull durable facts") }
func isSummary(msgs []core.Message) bool    { return isKind(msgs, "You compress") }
func isDistill(msgs []core.Message) bool    { return isKind(msgs, "You maintain the long-term") }

// vecEmbedder returns fixed vectors per text and a default axis otherwise.
type vecEmbedder struct {
	mu   sync.Mutex
	vecs map[string][]float32
	fail map[string]bool
}

func newVecEmbedder() *vecEmbedder {
	return &vecEmbedder{vecs: map[string][]float32{}, fail: map[string]bool{}}
}

func (e *vecEmbedder) set(text string, v []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vecs[text] = v
}

func (e *vecEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail[text] {
		return nil, errors.New("embedding backend down")
	}
	if v, ok := e.vecs[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0, 1}, nil
}

func (e *vecEmbedder) Dims() int { return testDim }

// atDistance returns a unit vector whose cosine distance to (1,0,0,0) is d.
func atDistance(d float64) []float32 {
	cos := 1 - d
	sin := math.Sqrt(math.Max(0, 1-cos*cos))
	return []float32{float32(cos), float32(sin), 0, 0}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedder offline")
}
func (failingEmbedder) Dims() int { return testDim }

type panickingEmbedder struct{}

func (panickingEmbedder) Embed(context.Context, string) ([]float32, error) { panic("boom") }
func (panickingEmbedder) Dims() int                                        { return testDim }
