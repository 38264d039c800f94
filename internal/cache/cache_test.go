package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/models"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "leaderboard:7:top:5", TopKey(7, 5))
	assert.Equal(t, "leaderboard:7:keys", IndexKey(7))
}

func TestNoop(t *testing.T) {
	var c LeaderboardCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.StoreTop(ctx, 1, 5, []models.LeaderboardEntry{{UserID: 1}}))
	entries, ok, err := c.Top(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entries)
	assert.NoError(t, c.Invalidate(ctx, 1))
}
