package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/dancerank/internal/models"
)

// MockLeaderboardCache is a mock implementation of cache.LeaderboardCache
type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) Top(ctx context.Context, musicID int64, n int) ([]models.LeaderboardEntry, bool, error) {
	args := m.Called(ctx, musicID, n)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Bool(1), args.Error(2)
}

func (m *MockLeaderboardCache) StoreTop(ctx context.Context, musicID int64, n int, entries []models.LeaderboardEntry) error {
	args := m.Called(ctx, musicID, n, entries)
	return args.Error(0)
}

func (m *MockLeaderboardCache) Invalidate(ctx context.Context, musicID int64) error {
	args := m.Called(ctx, musicID)
	return args.Error(0)
}
