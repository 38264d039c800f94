package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/worker"
)

type refresher struct {
	mu      sync.Mutex
	calls   []int64
	release chan struct{}
}

func (r *refresher) Refresh(_ context.Context, musicID int64) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, musicID)
	return nil
}

func TestEnqueueLeaderboardRefresh(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	r := &refresher{}
	q := NewWorkerQueue(pool, r)

	require.NoError(t, q.EnqueueLeaderboardRefresh(3))
	require.NoError(t, q.EnqueueLeaderboardRefresh(5))
	pool.Stop()

	assert.ElementsMatch(t, []int64{3, 5}, r.calls)
}

func TestEnqueueLeaderboardRefreshQueueFull(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	r := &refresher{release: make(chan struct{})}
	q := NewWorkerQueue(pool, r)

	require.NoError(t, q.EnqueueLeaderboardRefresh(1))
	// wait for the worker to pick up the first job
	require.Eventually(t, func() bool { return pool.QueueSize() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.EnqueueLeaderboardRefresh(2))
	assert.ErrorIs(t, q.EnqueueLeaderboardRefresh(3), ErrQueueFull)

	close(r.release)
	pool.Stop()
}

func TestEnqueueAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	q := NewWorkerQueue(pool, &refresher{})
	assert.ErrorIs(t, q.EnqueueLeaderboardRefresh(1), ErrQueueFull)
}
