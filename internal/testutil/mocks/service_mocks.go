package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/dancerank/internal/models"
)

// MockScoreRecorder is a mock implementation of services.ScoreRecorder
type MockScoreRecorder struct {
	mock.Mock
}

func (m *MockScoreRecorder) Record(ctx context.Context, musicID, userID int64, result models.ScoreResult) (int64, error) {
	args := m.Called(ctx, musicID, userID, result)
	return args.Get(0).(int64), args.Error(1)
}
