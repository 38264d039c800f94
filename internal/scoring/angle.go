package scoring

import (
	"math"

	"github.com/vytor/dancerank/internal/models"
)

// Angle returns the direction of the vector b->a in degrees, in (-180, 180].
// NaN coordinates yield NaN.
func Angle(a, b models.Keypoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	// Atan2 gives -pi for a negative-zero dy.
	if deg == -180 {
		return 180
	}
	return deg
}

// Deviation returns the smallest angle between two directions, in [0, 180].
func Deviation(user, ref float64) float64 {
	d := math.Abs(user - ref)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
