// Package scoring grades a submitted pose sequence against a reference
// motion. Everything here is pure and safe for concurrent use.
package scoring

import (
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/rank"
)

// Engine turns a play into a ScoreResult.
type Engine struct {
	checkpoints []Checkpoint
	thresholds  Thresholds
	ranks       rank.Table
	frames      FrameScorer
}

// Option configures an Engine.
type Option func(*Engine)

// WithCheckpoints replaces the graded checkpoint set.
func WithCheckpoints(cps []Checkpoint) Option {
	return func(e *Engine) {
		if len(cps) > 0 {
			e.checkpoints = cps
		}
	}
}

// WithThresholds replaces the tier bounds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithRankTable replaces the rank economy.
func WithRankTable(t rank.Table) Option {
	return func(e *Engine) {
		e.ranks = t
	}
}

// NewEngine builds an Engine with the default checkpoints, thresholds and
// rank table unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		checkpoints: DefaultCheckpoints(),
		thresholds:  DefaultThresholds(),
		ranks:       rank.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.frames = NewFrameScorer(e.checkpoints, e.thresholds)
	return e
}

// Score grades play against the reference frames. Play frame 0 is a rest
// frame and is never graded; frames past the end of the reference are
// skipped.
func (e *Engine) Score(reference []models.Frame, play []models.Frame) models.ScoreResult {
	results := make([]FrameResult, 0, len(play))
	for i := 1; i < len(play); i++ {
		idx, ok := Align(reference, i)
		if !ok {
			continue
		}
		results = append(results, e.frames.Score(play[i].Keypoints, reference[idx].Keypoints))
	}
	return e.Aggregate(results)
}

// Aggregate reduces per-frame results into a percentage, histogram, rank
// and XP reward. With no graded frames the score is zero.
func (e *Engine) Aggregate(results []FrameResult) models.ScoreResult {
	var (
		sum  float64
		hist models.TierHistogram
	)
	for _, r := range results {
		sum += r.Score
		for t, n := range r.Tiers {
			hist.Add(models.Tier(t), n)
		}
	}

	var pct float64
	if len(results) > 0 {
		pct = sum / float64(len(results)*e.frames.Checkpoints()) * 100
	}

	rk := e.ranks.RankOf(pct)
	return models.ScoreResult{
		Score:        pct,
		Rank:         rk,
		XPDelta:      e.ranks.XPOf(rk),
		Histogram:    hist,
		FramesGraded: len(results),
	}
}
