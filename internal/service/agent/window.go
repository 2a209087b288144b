package agent

import (
	"sync"

	"github.com/sandevgo/lobug/internal/core"
)

// Window keeps the most recent conversation turns in memory, oldest first.
type Window struct {
	mu    sync.Mutex
	size  int
	turns []core.Message
}

func NewWindow(size int) *Window {
	if size <= 0 {
		size = 1
	}
	return &Window{size: size, turns: make([]core.Message, 0, size)}
}

func (w *Window) Add(role core.Role, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, core.Message{Role: role, Content: content})
	if over := len(w.turns) - w.size; over > 0 {
		w.turns = append(w.turns[:0], w.turns[over:]...)
	}
}

// Messages returns a copy of the window.
func (w *Window) Messages() []core.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Message(nil), w.turns...)
}

// LastUser returns the newest user turn, if any.
func (w *Window) LastUser() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.turns) - 1; i >= 0; i-- {
		if w.turns[i].Role == core.RoleUser {
			return w.turns[i].Content, true
		}
	}
	return "", false
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns)
}

func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = w.turns[:0]
}
