package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

type refresherStub struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (r *refresherStub) Refresh(_ context.Context, musicID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, musicID)
	return r.err
}

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(3, 10)
	p.Start(context.Background())

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, p.TrySubmit(funcJob{name: "count", fn: func(context.Context) error {
			n.Add(1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(10), n.Load())
}

func TestPoolSurvivesFailingAndPanickingJobs(t *testing.T) {
	p := NewPool(1, 4)
	p.Start(context.Background())

	var ran atomic.Bool
	p.TrySubmit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }})
	p.TrySubmit(funcJob{name: "panic", fn: func(context.Context) error { panic("boom") }})
	p.TrySubmit(funcJob{name: "ok", fn: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	p.Stop()

	assert.True(t, ran.Load())
}

func TestTrySubmitDropsWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})
	p.Start(context.Background())

	require.True(t, p.TrySubmit(funcJob{name: "block", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	assert.True(t, p.TrySubmit(noop), "one slot in the queue")
	assert.False(t, p.TrySubmit(noop), "queue is full")

	close(release)
	p.Stop()
}

func TestTrySubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	assert.False(t, p.TrySubmit(noop))
}

func TestStopAfterContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1, 2)
	p.Start(ctx)
	cancel()

	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	for i := 0; i < 5; i++ {
		p.TrySubmit(noop)
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return with exited workers and a full queue")
	}
}

func TestRefreshLeaderboardJob(t *testing.T) {
	stub := &refresherStub{}
	p := NewPool(1, 2)
	p.Start(context.Background())

	job := &RefreshLeaderboardJob{Refresher: stub, MusicID: 42}
	assert.Equal(t, "refresh_leaderboard:42", job.Name())
	p.TrySubmit(job)

	require.Eventually(t, func() bool {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		return len(stub.calls) == 1
	}, time.Second, 5*time.Millisecond)
	p.Stop()

	assert.Equal(t, []int64{42}, stub.calls)
}
