package models

import "time"

// Tier classifies the angular deviation of a single checkpoint.
type Tier int

const (
	TierPerfect Tier = iota
	TierGreat
	TierGood
	TierNormal
	TierMiss
)

// TierCount is the number of tiers a checkpoint can fall into.
const TierCount = 5

func (t Tier) String() string {
	switch t {
	case TierPerfect:
		return "perfect"
	case TierGreat:
		return "great"
	case TierGood:
		return "good"
	case TierNormal:
		return "normal"
	case TierMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// TierHistogram counts graded checkpoints per tier.
type TierHistogram struct {
	Perfect int `json:"perfect"`
	Great   int `json:"great"`
	Good    int `json:"good"`
	Normal  int `json:"normal"`
	Miss    int `json:"miss"`
}

// Add increments the bucket for t by n.
func (h *TierHistogram) Add(t Tier, n int) {
	switch t {
	case TierPerfect:
		h.Perfect += n
	case TierGreat:
		h.Great += n
	case TierGood:
		h.Good += n
	case TierNormal:
		h.Normal += n
	default:
		h.Miss += n
	}
}

// Total is the number of graded checkpoints.
func (h TierHistogram) Total() int {
	return h.Perfect + h.Great + h.Good + h.Normal + h.Miss
}

// Rank is the letter grade derived from a percentage score.
type Rank string

const (
	RankSSS Rank = "SSS"
	RankS   Rank = "S"
	RankA   Rank = "A"
	RankB   Rank = "B"
	RankC   Rank = "C"
	RankD   Rank = "D"
	RankF   Rank = "F"
)

// ScoreResult is the outcome of grading one attempt.
type ScoreResult struct {
	Score        float64       `json:"score"`
	Rank         Rank          `json:"rank"`
	XPDelta      int           `json:"delta_xp"`
	Histogram    TierHistogram `json:"histogram"`
	FramesGraded int           `json:"-"`
}

// GuestResult is what an unauthenticated player gets back. Frame count and
// XP are never exposed for guests.
type GuestResult struct {
	Score     float64       `json:"score"`
	Rank      Rank          `json:"rank"`
	Histogram TierHistogram `json:"histogram"`
}

// Guest projects a full result down to the guest view.
func (r ScoreResult) Guest() GuestResult {
	return GuestResult{Score: r.Score, Rank: r.Rank, Histogram: r.Histogram}
}

// Attempt is the outcome of an authenticated play. Persisted is false when
// the result was computed but could not be stored.
type Attempt struct {
	ScoreResult
	ScoreID   int64 `json:"score_id,omitempty"`
	Persisted bool  `json:"persisted"`
}

// ScoreRecord is one persisted authenticated attempt. Records are append-only.
type ScoreRecord struct {
	ID        int64         `json:"id"`
	MusicID   int64         `json:"music_id"`
	UserID    int64         `json:"user_id"`
	Score     float64       `json:"score"`
	Rank      Rank          `json:"rank"`
	XPDelta   int           `json:"delta_xp"`
	Histogram TierHistogram `json:"histogram"`
	CreatedAt time.Time     `json:"created_at"`
}

// ResultView is a stored attempt together with the owner's current XP.
type ResultView struct {
	ScoreRecord
	XP int64 `json:"xp"`
}
