package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *db.DB {
	sqlDB, err := sql.Open(db.DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	d := db.Wrap(sqlDB, db.DriverSQLite)
	require.NoError(t, d.Migrate(context.Background()), "failed to apply migrations")
	return d
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedMusic inserts a song and returns its id.
func SeedMusic(t *testing.T, d *db.DB, title string) int64 {
	var id int64
	err := d.QueryRowContext(context.Background(),
		`INSERT INTO musics (title) VALUES (?) RETURNING id`, title).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedUser inserts a user with the given starting XP and returns its id.
func SeedUser(t *testing.T, d *db.DB, nickname string, xp int64) int64 {
	var id int64
	err := d.QueryRowContext(context.Background(),
		`INSERT INTO users (nickname, profile_image_url, xp) VALUES (?, ?, ?) RETURNING id`,
		nickname, "https://img.example/"+nickname+".png", xp).Scan(&id)
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table.
func Count(t *testing.T, d *db.DB, table string) int {
	var n int
	require.NoError(t, d.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

// Frames builds n frames spaced 0.5s apart, all holding the same pose.
func Frames(pose []models.Keypoint, n int, start float64) []models.Frame {
	out := make([]models.Frame, n)
	for i := range out {
		kps := make([]models.Keypoint, len(pose))
		copy(kps, pose)
		out[i] = models.Frame{Time: start + float64(i)*0.5, Keypoints: kps}
	}
	return out
}

// Pose returns a 17-keypoint skeleton with every default checkpoint pair
// at a distinct angle.
func Pose() []models.Keypoint {
	kps := make([]models.Keypoint, 17)
	for i := range kps {
		kps[i] = models.Keypoint{X: float64(i * 10), Y: float64(i*i) * 0.5}
	}
	return kps
}
