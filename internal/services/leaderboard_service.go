package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/vytor/dancerank/internal/cache"
	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/metrics"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
)

// LeaderboardService serves per-song rankings.
type LeaderboardService interface {
	TopRanking(ctx context.Context, musicID int64, n int) ([]models.LeaderboardEntry, error)
	// BestForUser returns nil when the user never played the song.
	BestForUser(ctx context.Context, musicID, userID int64) (*models.UserBest, error)
	Refresh(ctx context.Context, musicID int64) error
}

type leaderboardService struct {
	scores  repository.ScoreRepository
	users   repository.UserRepository
	cache   cache.LeaderboardCache
	metrics *metrics.Manager
	minTop  int
	maxTop  int
}

// NewLeaderboardService creates a new LeaderboardService. Requests for fewer
// than minTop entries are raised to minTop. A positive maxTop caps larger
// requests; zero leaves them uncapped.
func NewLeaderboardService(scores repository.ScoreRepository, users repository.UserRepository, c cache.LeaderboardCache, m *metrics.Manager, minTop, maxTop int) LeaderboardService {
	if c == nil {
		c = cache.Noop{}
	}
	if m == nil {
		m = metrics.NewManager()
	}
	if minTop < 1 {
		minTop = 1
	}
	if maxTop < 0 {
		maxTop = 0
	}
	if maxTop > 0 && maxTop < minTop {
		maxTop = minTop
	}
	return &leaderboardService{scores: scores, users: users, cache: c, metrics: m, minTop: minTop, maxTop: maxTop}
}

func (s *leaderboardService) clamp(n int) int {
	if n < s.minTop {
		return s.minTop
	}
	if s.maxTop > 0 && n > s.maxTop {
		return s.maxTop
	}
	return n
}

func (s *leaderboardService) TopRanking(ctx context.Context, musicID int64, n int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx)
	n = s.clamp(n)
	log.Debug("getting ranking: music_id=%d, top=%d", musicID, n)

	cached, ok, err := s.cache.Top(ctx, musicID, n)
	if err != nil {
		log.Warn("leaderboard cache read failed: %v", err)
	}
	if ok {
		err := s.withProfiles(ctx, cached)
		if err == nil {
			s.metrics.CacheHit()
			return cached, nil
		}
		log.Warn("failed to load profiles for cached ranking: %v", err)
	}
	s.metrics.CacheMiss()

	entries, err := s.scores.TopByMusic(ctx, musicID, n)
	if err != nil {
		log.Error("failed to load ranking: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	if err := s.cache.StoreTop(ctx, musicID, n, withoutProfiles(entries)); err != nil {
		log.Warn("leaderboard cache write failed: %v", err)
	}
	return entries, nil
}

// withoutProfiles keeps only the ranking itself. Profile fields change
// independently of the song and are joined on read.
func withoutProfiles(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = models.LeaderboardEntry{
			UserID:     e.UserID,
			MaxScore:   e.MaxScore,
			AchievedAt: e.AchievedAt,
			Position:   e.Position,
		}
	}
	return out
}

func (s *leaderboardService) withProfiles(ctx context.Context, entries []models.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if s.users == nil {
		return stderrors.New("no user repository")
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	profiles, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		u, ok := profiles[entries[i].UserID]
		if !ok {
			return fmt.Errorf("user %d missing", entries[i].UserID)
		}
		entries[i].Nickname = u.Nickname
		entries[i].ProfileImageURL = u.ProfileImageURL
		entries[i].XP = u.XP
	}
	return nil
}

func (s *leaderboardService) BestForUser(ctx context.Context, musicID, userID int64) (*models.UserBest, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting best attempt: music_id=%d, user_id=%d", musicID, userID)

	best, err := s.scores.BestForUser(ctx, musicID, userID)
	if err != nil {
		log.Error("failed to load best attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return best, nil
}

// Refresh drops every cached ranking of the song and warms the default size.
func (s *leaderboardService) Refresh(ctx context.Context, musicID int64) error {
	if err := s.cache.Invalidate(ctx, musicID); err != nil {
		return err
	}
	entries, err := s.scores.TopByMusic(ctx, musicID, s.minTop)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return s.cache.StoreTop(ctx, musicID, s.minTop, withoutProfiles(entries))
}
