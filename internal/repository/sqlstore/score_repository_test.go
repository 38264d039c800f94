package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
	"github.com/vytor/dancerank/internal/repository/sqlstore"
	"github.com/vytor/dancerank/internal/testutil"
)

type ScoreRepositorySuite struct {
	suite.Suite
	db    *db.DB
	repo  repository.ScoreRepository
	music int64
	base  time.Time
}

func (s *ScoreRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlstore.NewScoreRepository(s.db)
	s.music = testutil.SeedMusic(s.T(), s.db, "Next Level")
	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ScoreRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ScoreRepositorySuite) record(userID int64, score float64, at time.Duration) int64 {
	id, err := s.repo.Record(context.Background(), models.ScoreRecord{
		MusicID:   s.music,
		UserID:    userID,
		Score:     score,
		Rank:      models.RankA,
		XPDelta:   30,
		Histogram: models.TierHistogram{Perfect: 8, Great: 2},
		CreatedAt: s.base.Add(at),
	})
	s.Require().NoError(err)
	return id
}

func (s *ScoreRepositorySuite) TestRecordWritesEverything() {
	ctx := context.Background()
	user := testutil.SeedUser(s.T(), s.db, "mina", 100)

	id, err := s.repo.Record(ctx, models.ScoreRecord{
		MusicID:   s.music,
		UserID:    user,
		Score:     87.5,
		Rank:      models.RankA,
		XPDelta:   30,
		Histogram: models.TierHistogram{Perfect: 5, Great: 3, Good: 1, Normal: 0, Miss: 1},
	})
	s.Require().NoError(err)
	s.Greater(id, int64(0))

	s.Equal(1, testutil.Count(s.T(), s.db, "user_scores"))
	s.Equal(1, testutil.Count(s.T(), s.db, "user_score_details"))
	s.Equal(1, testutil.Count(s.T(), s.db, "user_play_logs"))

	music, err := sqlstore.NewMusicRepository(s.db).Get(ctx, s.music)
	s.Require().NoError(err)
	s.EqualValues(1, music.Played)

	u, err := sqlstore.NewUserRepository(s.db).Get(ctx, user)
	s.Require().NoError(err)
	s.EqualValues(130, u.XP)

	rec, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Equal(87.5, rec.Score)
	s.Equal(models.RankA, rec.Rank)
	s.Equal(30, rec.XPDelta)
	s.Equal(models.TierHistogram{Perfect: 5, Great: 3, Good: 1, Miss: 1}, rec.Histogram)
	s.False(rec.CreatedAt.IsZero())
}

func (s *ScoreRepositorySuite) TestRecordUnknownUserRollsBack() {
	ctx := context.Background()

	_, err := s.repo.Record(ctx, models.ScoreRecord{MusicID: s.music, UserID: 999, Score: 50, Rank: models.RankD, XPDelta: 5})
	s.Require().Error(err)
	s.True(errors.Is(err, repository.ErrNotFound))

	music, err := sqlstore.NewMusicRepository(s.db).Get(ctx, s.music)
	s.Require().NoError(err)
	s.EqualValues(0, music.Played, "play counter must be rolled back")
	s.Equal(0, testutil.Count(s.T(), s.db, "user_scores"))
	s.Equal(0, testutil.Count(s.T(), s.db, "user_play_logs"))
}

func (s *ScoreRepositorySuite) TestRecordUnknownMusic() {
	user := testutil.SeedUser(s.T(), s.db, "mina", 0)

	_, err := s.repo.Record(context.Background(), models.ScoreRecord{MusicID: 404, UserID: user, Score: 50})
	s.Require().Error(err)
	s.True(errors.Is(err, repository.ErrNotFound))
	s.Equal(0, testutil.Count(s.T(), s.db, "user_scores"))
}

func (s *ScoreRepositorySuite) TestGetMissing() {
	rec, err := s.repo.Get(context.Background(), 12345)
	s.NoError(err)
	s.Nil(rec)
}

func (s *ScoreRepositorySuite) TestTopByMusicPerUserBest() {
	ctx := context.Background()
	a := testutil.SeedUser(s.T(), s.db, "a", 0)
	b := testutil.SeedUser(s.T(), s.db, "b", 0)
	c := testutil.SeedUser(s.T(), s.db, "c", 0)

	s.record(a, 80, 0)
	s.record(a, 95, time.Minute)
	s.record(b, 90, 2*time.Minute)
	s.record(c, 70, 3*time.Minute)

	entries, err := s.repo.TopByMusic(ctx, s.music, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	s.Equal(a, entries[0].UserID)
	s.Equal(95.0, entries[0].MaxScore)
	s.Equal(1, entries[0].Position)
	s.Equal("a", entries[0].Nickname)
	s.Equal(b, entries[1].UserID)
	s.Equal(2, entries[1].Position)
	s.Equal(c, entries[2].UserID)
	s.Equal(3, entries[2].Position)

	top1, err := s.repo.TopByMusic(ctx, s.music, 1)
	s.Require().NoError(err)
	s.Require().Len(top1, 1)
	s.Equal(a, top1[0].UserID)
}

func (s *ScoreRepositorySuite) TestTopByMusicTieGoesToEarliest() {
	ctx := context.Background()
	late := testutil.SeedUser(s.T(), s.db, "late", 0)
	early := testutil.SeedUser(s.T(), s.db, "early", 0)

	s.record(late, 90, 5*time.Minute)
	s.record(early, 90, time.Minute)

	entries, err := s.repo.TopByMusic(ctx, s.music, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(early, entries[0].UserID)
	s.Equal(late, entries[1].UserID)
	s.True(entries[0].AchievedAt.Equal(s.base.Add(time.Minute)))
}

func (s *ScoreRepositorySuite) TestTopByMusicTieExcludesLowerScore() {
	ctx := context.Background()
	a := testutil.SeedUser(s.T(), s.db, "A", 0)
	b := testutil.SeedUser(s.T(), s.db, "B", 0)
	c := testutil.SeedUser(s.T(), s.db, "C", 0)

	s.record(c, 70, 0)
	s.record(a, 98, time.Minute)
	s.record(b, 98, 2*time.Minute)

	entries, err := s.repo.TopByMusic(ctx, s.music, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(a, entries[0].UserID)
	s.Equal(1, entries[0].Position)
	s.Equal(b, entries[1].UserID)
	s.Equal(2, entries[1].Position)
	for _, e := range entries {
		s.NotEqual(c, e.UserID)
	}
}

func (s *ScoreRepositorySuite) TestTopByMusicEmpty() {
	entries, err := s.repo.TopByMusic(context.Background(), s.music, 5)
	s.NoError(err)
	s.Empty(entries)
}

func (s *ScoreRepositorySuite) TestBestForUser() {
	ctx := context.Background()
	a := testutil.SeedUser(s.T(), s.db, "a", 0)
	b := testutil.SeedUser(s.T(), s.db, "b", 0)

	s.record(a, 95, 0)
	first := s.record(b, 88, time.Minute)
	s.record(b, 88, 2*time.Minute)
	s.record(b, 60, 3*time.Minute)

	best, err := s.repo.BestForUser(ctx, s.music, b)
	s.Require().NoError(err)
	s.Require().NotNil(best)
	s.Equal(first, best.ScoreID)
	s.Equal(88.0, best.Score)
	s.Equal(2, best.Position)
	s.Equal(8, best.Histogram.Perfect)

	best, err = s.repo.BestForUser(ctx, s.music, a)
	s.Require().NoError(err)
	s.Equal(1, best.Position)
}

func (s *ScoreRepositorySuite) TestBestForUserNoAttempts() {
	user := testutil.SeedUser(s.T(), s.db, "idle", 0)

	best, err := s.repo.BestForUser(context.Background(), s.music, user)
	s.NoError(err)
	s.Nil(best)
}

func (s *ScoreRepositorySuite) TestListByMusicAndUserNewestFirst() {
	ctx := context.Background()
	a := testutil.SeedUser(s.T(), s.db, "a", 0)
	b := testutil.SeedUser(s.T(), s.db, "b", 0)

	s.record(a, 10, 0)
	s.record(a, 20, time.Minute)
	s.record(a, 30, 2*time.Minute)
	s.record(b, 99, 3*time.Minute)

	recs, err := s.repo.ListByMusicAndUser(ctx, s.music, a, 2)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(30.0, recs[0].Score)
	s.Equal(20.0, recs[1].Score)

	all, err := s.repo.ListByMusic(ctx, s.music, 0)
	s.Require().NoError(err)
	s.Len(all, 4)
	s.Equal(b, all[0].UserID)
}

func TestScoreRepositorySuite(t *testing.T) {
	suite.Run(t, new(ScoreRepositorySuite))
}

func TestRecordConcurrentUsersKeepEveryCounterUpdate(t *testing.T) {
	d, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer testutil.MustClose(t, d)

	ctx := context.Background()
	repo := sqlstore.NewScoreRepository(d)
	music := testutil.SeedMusic(t, d, "Ditto")

	const players, plays = 8, 5
	users := make([]int64, players)
	for i := range users {
		users[i] = testutil.SeedUser(t, d, fmt.Sprintf("p%d", i), 0)
	}

	var wg sync.WaitGroup
	errs := make(chan error, players*plays)
	for _, user := range users {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			for i := 0; i < plays; i++ {
				_, err := repo.Record(ctx, models.ScoreRecord{
					MusicID: music,
					UserID:  user,
					Score:   float64(60 + i),
					Rank:    models.RankC,
					XPDelta: 10,
				})
				errs <- err
			}
		}(user)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	m, err := sqlstore.NewMusicRepository(d).Get(ctx, music)
	require.NoError(t, err)
	assert.EqualValues(t, players*plays, m.Played)
	assert.Equal(t, players*plays, testutil.Count(t, d, "user_scores"))
	assert.Equal(t, players*plays, testutil.Count(t, d, "user_play_logs"))

	profiles, err := sqlstore.NewUserRepository(d).GetMany(ctx, users)
	require.NoError(t, err)
	for _, user := range users {
		assert.EqualValues(t, plays*10, profiles[user].XP)
	}
}
