package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/dancerank/internal/models"
)

// MockMusicRepository is a mock implementation of repository.MusicRepository
type MockMusicRepository struct {
	mock.Mock
}

func (m *MockMusicRepository) Get(ctx context.Context, id int64) (*models.Music, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Music), args.Error(1)
}

func (m *MockMusicRepository) Insert(ctx context.Context, title string) (*models.Music, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Music), args.Error(1)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetMany(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.User), args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, nickname, profileImageURL string) (*models.User, error) {
	args := m.Called(ctx, nickname, profileImageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSheetRepository is a mock implementation of repository.SheetRepository
type MockSheetRepository struct {
	mock.Mock
}

func (m *MockSheetRepository) Get(ctx context.Context, musicID int64) (*models.ReferenceSheet, error) {
	args := m.Called(ctx, musicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReferenceSheet), args.Error(1)
}

func (m *MockSheetRepository) Insert(ctx context.Context, sheet models.ReferenceSheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

// MockScoreRepository is a mock implementation of repository.ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Record(ctx context.Context, rec models.ScoreRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScoreRepository) Get(ctx context.Context, id int64) (*models.ScoreRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreRecord), args.Error(1)
}

func (m *MockScoreRepository) ListByMusic(ctx context.Context, musicID int64, limit int) ([]models.ScoreRecord, error) {
	args := m.Called(ctx, musicID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoreRecord), args.Error(1)
}

func (m *MockScoreRepository) ListByMusicAndUser(ctx context.Context, musicID, userID int64, limit int) ([]models.ScoreRecord, error) {
	args := m.Called(ctx, musicID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoreRecord), args.Error(1)
}

func (m *MockScoreRepository) TopByMusic(ctx context.Context, musicID int64, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, musicID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

func (m *MockScoreRepository) BestForUser(ctx context.Context, musicID, userID int64) (*models.UserBest, error) {
	args := m.Called(ctx, musicID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBest), args.Error(1)
}
