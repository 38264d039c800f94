package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/jobs"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/metrics"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
	"github.com/vytor/dancerank/internal/retry"
)

// ScoreRecorder persists an authenticated attempt and its side effects.
type ScoreRecorder interface {
	Record(ctx context.Context, musicID, userID int64, result models.ScoreResult) (int64, error)
}

// RecorderConfig tunes how hard the recorder tries before giving up.
type RecorderConfig struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

type scoreRecorder struct {
	scores   repository.ScoreRepository
	policy   *retry.Policy
	timeout  time.Duration
	jobQueue jobs.JobQueue
	metrics  *metrics.Manager
}

// NewScoreRecorder creates a new ScoreRecorder. jobQueue may be nil, in which
// case cached rankings simply expire on their own.
func NewScoreRecorder(scores repository.ScoreRepository, cfg RecorderConfig, jobQueue jobs.JobQueue, m *metrics.Manager) ScoreRecorder {
	policy := retry.New(cfg.Attempts, cfg.Delay, retry.WithPermanent(func(err error) bool {
		return stderrors.Is(err, repository.ErrNotFound)
	}))
	if m == nil {
		m = metrics.NewManager()
	}
	return &scoreRecorder{
		scores:   scores,
		policy:   policy,
		timeout:  cfg.Timeout,
		jobQueue: jobQueue,
		metrics:  m,
	}
}

func (r *scoreRecorder) Record(ctx context.Context, musicID, userID int64, result models.ScoreResult) (int64, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"music_id": musicID, "user_id": userID})

	rec := models.ScoreRecord{
		MusicID:   musicID,
		UserID:    userID,
		Score:     result.Score,
		Rank:      result.Rank,
		XPDelta:   result.XPDelta,
		Histogram: result.Histogram,
		CreatedAt: time.Now().UTC(),
	}

	var scoreID int64
	err := r.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			r.metrics.PersistRetried()
			log.Warn("retrying attempt persistence (%d/%d)", attempt, r.policy.Attempts())
		}
		attemptCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		id, err := r.scores.Record(attemptCtx, rec)
		if err != nil {
			return err
		}
		scoreID = id
		return nil
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			log.Warn("attempt references missing data: %v", err)
			return 0, errors.NewNotFoundErrorf(err, "music %d or user %d not found", musicID, userID)
		}
		r.metrics.PersistFailed()
		log.Error("failed to persist attempt: %v", err)
		return 0, errors.NewUnavailableError("attempt", err)
	}

	if r.jobQueue != nil {
		if err := r.jobQueue.EnqueueLeaderboardRefresh(musicID); err != nil {
			r.metrics.RefreshDropped()
			log.Warn("leaderboard refresh not queued: %v", err)
		}
	}
	return scoreID, nil
}
