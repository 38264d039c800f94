package repository

import (
	"context"
	"errors"

	"github.com/vytor/dancerank/internal/models"
)

var (
	// ErrNotFound is returned when a write references a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a row that must be unique.
	ErrAlreadyExists = errors.New("already exists")
)

// MusicRepository is the narrow view of the song catalog the game needs.
type MusicRepository interface {
	Get(ctx context.Context, id int64) (*models.Music, error)
	Insert(ctx context.Context, title string) (*models.Music, error)
}

// UserRepository is the narrow view of user profiles the game needs.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	// GetMany returns the users found among ids, keyed by id.
	GetMany(ctx context.Context, ids []int64) (map[int64]models.User, error)
	Insert(ctx context.Context, nickname, profileImageURL string) (*models.User, error)
}

// SheetRepository stores reference sheets. A sheet is written once per song.
type SheetRepository interface {
	Get(ctx context.Context, musicID int64) (*models.ReferenceSheet, error)
	Insert(ctx context.Context, sheet models.ReferenceSheet) error
}

// ScoreRepository stores attempts and answers leaderboard queries.
type ScoreRepository interface {
	// Record stores an attempt with its detail and play log, bumps the
	// song's play counter and adds the XP reward to the user, all in one
	// transaction.
	Record(ctx context.Context, rec models.ScoreRecord) (int64, error)
	Get(ctx context.Context, id int64) (*models.ScoreRecord, error)
	ListByMusic(ctx context.Context, musicID int64, limit int) ([]models.ScoreRecord, error)
	ListByMusicAndUser(ctx context.Context, musicID, userID int64, limit int) ([]models.ScoreRecord, error)
	TopByMusic(ctx context.Context, musicID int64, limit int) ([]models.LeaderboardEntry, error)
	BestForUser(ctx context.Context, musicID, userID int64) (*models.UserBest, error)
}
