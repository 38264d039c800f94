package scoring

import (
	"math"

	"github.com/vytor/dancerank/internal/models"
)

// Thresholds are the inclusive upper bounds, in degrees, of each tier.
// Anything above Normal is a miss.
type Thresholds struct {
	Perfect float64
	Great   float64
	Good    float64
	Normal  float64
}

// DefaultThresholds returns the standard tier bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{Perfect: 10, Great: 20, Good: 40, Normal: 70}
}

// Classify returns the tier for a deviation. NaN is a miss.
func (t Thresholds) Classify(deviation float64) models.Tier {
	switch {
	case deviation <= t.Perfect:
		return models.TierPerfect
	case deviation <= t.Great:
		return models.TierGreat
	case deviation <= t.Good:
		return models.TierGood
	case deviation <= t.Normal:
		return models.TierNormal
	default:
		return models.TierMiss
	}
}

// Contribution is the frame score a checkpoint adds: cos(deviation) inside
// the normal bound, zero beyond it.
func (t Thresholds) Contribution(deviation float64) float64 {
	if deviation <= t.Normal {
		return math.Cos(radians(deviation))
	}
	return 0
}

// FrameResult is the grade of one play frame.
type FrameResult struct {
	Score float64
	Tiers [models.TierCount]int
}

// FrameScorer grades a play frame against its reference frame.
type FrameScorer struct {
	checkpoints []Checkpoint
	thresholds  Thresholds
}

// NewFrameScorer returns a scorer for the given checkpoints and thresholds.
func NewFrameScorer(checkpoints []Checkpoint, thresholds Thresholds) FrameScorer {
	cps := make([]Checkpoint, len(checkpoints))
	copy(cps, checkpoints)
	return FrameScorer{checkpoints: cps, thresholds: thresholds}
}

// Checkpoints returns how many checkpoints each frame is graded on.
func (s FrameScorer) Checkpoints() int {
	return len(s.checkpoints)
}

// Score grades user against ref. A checkpoint whose landmarks are missing
// from either frame counts as a miss.
func (s FrameScorer) Score(user, ref []models.Keypoint) FrameResult {
	var res FrameResult
	for _, cp := range s.checkpoints {
		u, okU := cp.vector(user)
		r, okR := cp.vector(ref)
		if !okU || !okR {
			res.Tiers[models.TierMiss]++
			continue
		}
		d := Deviation(u, r)
		res.Score += s.thresholds.Contribution(d)
		res.Tiers[s.thresholds.Classify(d)]++
	}
	return res
}
