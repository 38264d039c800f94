package worker

import (
	"context"
	"fmt"
)

// LeaderboardRefresher rebuilds the cached rankings of a song.
type LeaderboardRefresher interface {
	Refresh(ctx context.Context, musicID int64) error
}

// RefreshLeaderboardJob brings a song's cached rankings up to date after a
// new attempt was stored.
type RefreshLeaderboardJob struct {
	Refresher LeaderboardRefresher
	MusicID   int64
}

func (j *RefreshLeaderboardJob) Name() string {
	return fmt.Sprintf("refresh_leaderboard:%d", j.MusicID)
}

func (j *RefreshLeaderboardJob) Run(ctx context.Context) error {
	return j.Refresher.Refresh(ctx, j.MusicID)
}
