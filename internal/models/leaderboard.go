package models

import "time"

// LeaderboardEntry is one row of a song ranking. It is derived on read and
// never stored.
type LeaderboardEntry struct {
	UserID          int64     `json:"id"`
	Nickname        string    `json:"nickname"`
	ProfileImageURL string    `json:"profile_image_url"`
	XP              int64     `json:"xp"`
	MaxScore        float64   `json:"score"`
	AchievedAt      time.Time `json:"achieved_at"`
	Position        int       `json:"rank"`
}

// UserBest is a user's best attempt on a song and their absolute position
// among everyone who played it.
type UserBest struct {
	ScoreID   int64         `json:"score_id"`
	Score     float64       `json:"score"`
	Rank      Rank          `json:"rank"`
	Histogram TierHistogram `json:"histogram"`
	Position  int           `json:"user_rank"`
	CreatedAt time.Time     `json:"created_at"`
}
