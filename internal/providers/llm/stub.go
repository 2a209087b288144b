package llm

import (
	"context"
	"sync"

	"github.com/sandevgo/lobug/internal/core"
)

// Stub replays scripted replies in order, repeating the last one. It backs
// offline runs (LOBUG_LLM_PROVIDER=stub) and tests.
type Stub struct {
	mu      sync.Mutex
	replies []string
	next    int
	calls   [][]core.Message
}

var _ core.ChatModel = (*Stub)(nil)

func NewStub(replies ...string) *Stub {
	return &Stub{replies: replies}
}

func (s *Stub) Chat(_ context.Context, messages []core.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]core.Message(nil), messages...))
	if len(s.replies) == 0 {
		return "", nil
	}

	reply := s.replies[s.next]
	if s.next < len(s.replies)-1 {
		s.next++
	}
	return reply, nil
}

// Calls returns a copy of every conversation the stub received.
func (s *Stub) Calls() [][]core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]core.Message(nil), s.calls...)
}
