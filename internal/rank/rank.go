// Package rank maps percentage scores to letter grades and grades to XP.
package rank

import "github.com/vytor/dancerank/internal/models"

// Step is one row of the score table: scores at or above MinScore earn Rank.
type Step struct {
	MinScore float64
	Rank     models.Rank
}

// Table is the rank economy. Steps must be ordered by descending MinScore.
// A zero Table is not usable; build one with Default or New.
type Table struct {
	steps    []Step
	fallback models.Rank
	xp       map[models.Rank]int
}

// New builds a Table. Scores below every step fall back to fallback, and
// ranks missing from xp award nothing.
func New(steps []Step, fallback models.Rank, xp map[models.Rank]int) Table {
	s := make([]Step, len(steps))
	copy(s, steps)
	x := make(map[models.Rank]int, len(xp))
	for k, v := range xp {
		x[k] = v
	}
	return Table{steps: s, fallback: fallback, xp: x}
}

// Default returns the standard game economy.
func Default() Table {
	return New(
		[]Step{
			{MinScore: 95, Rank: models.RankSSS},
			{MinScore: 90, Rank: models.RankS},
			{MinScore: 80, Rank: models.RankA},
			{MinScore: 70, Rank: models.RankB},
			{MinScore: 60, Rank: models.RankC},
			{MinScore: 40, Rank: models.RankD},
		},
		models.RankF,
		map[models.Rank]int{
			models.RankSSS: 100,
			models.RankS:   50,
			models.RankA:   30,
			models.RankB:   15,
			models.RankC:   10,
			models.RankD:   5,
			models.RankF:   0,
		},
	)
}

// RankOf returns the letter grade for a percentage score. NaN falls through
// to the lowest rank.
func (t Table) RankOf(score float64) models.Rank {
	for _, s := range t.steps {
		if score >= s.MinScore {
			return s.Rank
		}
	}
	return t.fallback
}

// XPOf returns the XP reward for a rank.
func (t Table) XPOf(r models.Rank) int {
	return t.xp[r]
}

// Valid reports whether r is a rank this table can produce.
func (t Table) Valid(r models.Rank) bool {
	if r == t.fallback {
		return true
	}
	for _, s := range t.steps {
		if s.Rank == r {
			return true
		}
	}
	return false
}
