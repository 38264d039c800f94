package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueLeaderboardRefresh(musicID int64) error {
	args := m.Called(musicID)
	return args.Error(0)
}
