package scoring

import "github.com/vytor/dancerank/internal/models"

// Checkpoint is a pair of landmark indices whose connecting limb vector is
// graded every frame.
type Checkpoint struct {
	A int
	B int
}

// DefaultCheckpoints returns the ten graded limb vectors: upper and lower
// arms, upper and lower legs, and the two wrist-to-ankle diagonals.
func DefaultCheckpoints() []Checkpoint {
	return []Checkpoint{
		{5, 7},
		{7, 9},
		{6, 8},
		{8, 10},
		{11, 13},
		{13, 15},
		{12, 14},
		{14, 16},
		{9, 15},
		{10, 16},
	}
}

// vector returns the angle of the checkpoint in kps, or false when either
// landmark is missing.
func (c Checkpoint) vector(kps []models.Keypoint) (float64, bool) {
	if c.A < 0 || c.B < 0 || c.A >= len(kps) || c.B >= len(kps) {
		return 0, false
	}
	return Angle(kps[c.A], kps[c.B]), true
}
