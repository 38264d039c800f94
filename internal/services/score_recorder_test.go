package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/jobs"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
	"github.com/vytor/dancerank/internal/repository/sqlstore"
	"github.com/vytor/dancerank/internal/testutil"
	"github.com/vytor/dancerank/internal/testutil/mocks"
)

var fastRetry = RecorderConfig{Attempts: 3, Delay: time.Millisecond, Timeout: time.Second}

var sampleResult = models.ScoreResult{
	Score:     92.5,
	Rank:      models.RankS,
	XPDelta:   50,
	Histogram: models.TierHistogram{Perfect: 9, Miss: 1},
}

func TestScoreRecorder_StoresAndSchedulesRefresh(t *testing.T) {
	d := testutil.NewTestDB(t)
	defer testutil.MustClose(t, d)
	music := testutil.SeedMusic(t, d, "Hype Boy")
	user := testutil.SeedUser(t, d, "hanni", 10)

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueLeaderboardRefresh", music).Return(nil).Once()

	rec := NewScoreRecorder(sqlstore.NewScoreRepository(d), fastRetry, queue, nil)
	id, err := rec.Record(context.Background(), music, user, sampleResult)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	queue.AssertExpectations(t)

	u, err := sqlstore.NewUserRepository(d).Get(context.Background(), user)
	require.NoError(t, err)
	assert.EqualValues(t, 60, u.XP)
	assert.Equal(t, 1, testutil.Count(t, d, "user_play_logs"))
}

func TestScoreRecorder_UnknownUserIsNotRetried(t *testing.T) {
	repo := new(mocks.MockScoreRepository)
	repo.On("Record", mock.Anything, mock.Anything).Return(int64(0), repository.ErrNotFound).Once()

	rec := NewScoreRecorder(repo, fastRetry, nil, nil)
	_, err := rec.Record(context.Background(), 1, 404, sampleResult)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "music 1 or user 404 not found", appErr.Message)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNumberOfCalls(t, "Record", 1)
}

func TestScoreRecorder_RetriesTransientFailures(t *testing.T) {
	repo := new(mocks.MockScoreRepository)
	repo.On("Record", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("database is locked")).Twice()
	repo.On("Record", mock.Anything, mock.MatchedBy(func(r models.ScoreRecord) bool {
		return r.MusicID == 1 && r.UserID == 2 && r.XPDelta == 50 && !r.CreatedAt.IsZero()
	})).Return(int64(77), nil).Once()

	rec := NewScoreRecorder(repo, fastRetry, nil, nil)
	id, err := rec.Record(context.Background(), 1, 2, sampleResult)
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	repo.AssertNumberOfCalls(t, "Record", 3)
}

func TestScoreRecorder_GivesUpAsUnavailable(t *testing.T) {
	repo := new(mocks.MockScoreRepository)
	repo.On("Record", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("connection refused"))

	rec := NewScoreRecorder(repo, fastRetry, nil, nil)
	_, err := rec.Record(context.Background(), 1, 2, sampleResult)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnavailable, appErr.Code)
	assert.True(t, appErr.Retryable())
	repo.AssertNumberOfCalls(t, "Record", 3)
}

func TestScoreRecorder_FullQueueDoesNotFailTheWrite(t *testing.T) {
	repo := new(mocks.MockScoreRepository)
	repo.On("Record", mock.Anything, mock.Anything).Return(int64(9), nil)
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueLeaderboardRefresh", int64(1)).Return(jobs.ErrQueueFull)

	rec := NewScoreRecorder(repo, fastRetry, queue, nil)
	id, err := rec.Record(context.Background(), 1, 2, sampleResult)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	queue.AssertExpectations(t)
}
