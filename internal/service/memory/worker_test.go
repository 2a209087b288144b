package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu      sync.Mutex
	seen    []string
	active  int
	maxSeen int
	block   chan struct{}
	panicOn string
}

func (p *recordingProcessor) ProcessExchange(_ context.Context, user, _ string) Report {
	p.mu.Lock()
	p.active++
	if p.active > p.maxSeen {
		p.maxSeen = p.active
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.seen = append(p.seen, user)
		p.mu.Unlock()
	}()

	if p.block != nil {
		<-p.block
	}
	if user == p.panicOn {
		panic("processor exploded")
	}
	time.Sleep(time.Millisecond)
	return Report{}
}

func (p *recordingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func TestWorker_ProcessesSeriallyInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := &recordingProcessor{}
	w := NewWorker(proc, 16)
	go func() { _ = w.Start(ctx) }()

	for _, u := range []string{"a", "b", "c", "d"} {
		require.True(t, w.Submit(ctx, u, "reply"))
	}

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	require.NoError(t, w.Shutdown(sctx))

	assert.Equal(t, []string{"a", "b", "c", "d"}, proc.processed())
	assert.Equal(t, 1, proc.maxSeen)
	assert.False(t, w.Submit(ctx, "late", "reply"), "closed worker rejects jobs")
}

func TestWorker_SubmitNeverBlocks(t *testing.T) {
	ctx := context.Background()
	proc := &recordingProcessor{block: make(chan struct{})}
	w := NewWorker(proc, 1)
	go func() { _ = w.Start(ctx) }()

	require.True(t, w.Submit(ctx, "first", ""))
	// wait for the consumer to pick up the first job
	require.Eventually(t, func() bool { return w.Pending() == 0 }, time.Second, time.Millisecond)
	require.True(t, w.Submit(ctx, "second", ""))

	done := make(chan bool)
	go func() { done <- w.Submit(ctx, "third", "") }()

	select {
	case ok := <-done:
		assert.False(t, ok, "full queue drops the job")
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(proc.block)
	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(sctx))
	assert.Equal(t, []string{"first", "second"}, proc.processed())
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	proc := &recordingProcessor{panicOn: "bad"}
	w := NewWorker(proc, 4)
	go func() { _ = w.Start(ctx) }()

	require.True(t, w.Submit(ctx, "bad", ""))
	require.True(t, w.Submit(ctx, "good", ""))

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(sctx))
	assert.Equal(t, []string{"bad", "good"}, proc.processed())
}

func TestWorker_AcceptedJobsSurviveShutdownRace(t *testing.T) {
	ctx := context.Background()
	proc := &recordingProcessor{}
	w := NewWorker(proc, 512)
	go func() { _ = w.Start(ctx) }()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if w.Submit(ctx, "u", "a") {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(sctx))
	wg.Wait()

	assert.Len(t, proc.processed(), accepted, "every accepted job ran before shutdown returned")
	assert.Zero(t, w.Pending())
}
