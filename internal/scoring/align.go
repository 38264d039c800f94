package scoring

import "github.com/vytor/dancerank/internal/models"

// Align maps a 1-based play frame index to its reference frame index. The
// reference is sampled at twice the play rate; a sheet that starts at time
// zero is offset by one frame. ok is false when the play frame has no
// reference counterpart.
func Align(frames []models.Frame, i int) (idx int, ok bool) {
	if i < 1 || len(frames) == 0 {
		return 0, false
	}
	idx = 2*i - 1
	if frames[0].Time == 0 {
		idx = 2 * i
	}
	if idx >= len(frames) {
		return 0, false
	}
	return idx, true
}
