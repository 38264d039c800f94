package jobs

import (
	"github.com/vytor/dancerank/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	refreshPool *worker.Pool
	refresher   worker.LeaderboardRefresher
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(refreshPool *worker.Pool, refresher worker.LeaderboardRefresher) JobQueue {
	return &WorkerQueue{
		refreshPool: refreshPool,
		refresher:   refresher,
	}
}

// EnqueueLeaderboardRefresh never blocks the caller; a full queue drops the
// job and the cached ranking expires on its own.
func (q *WorkerQueue) EnqueueLeaderboardRefresh(musicID int64) error {
	job := &worker.RefreshLeaderboardJob{Refresher: q.refresher, MusicID: musicID}
	if !q.refreshPool.TrySubmit(job) {
		return ErrQueueFull
	}
	return nil
}
