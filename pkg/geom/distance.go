package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PoincareDistance is the hyperbolic distance between two points of the
// Poincaré ball. It is meant for diagnostics.
func PoincareDistance(a, b mgl64.Vec3) float64 {
	diff := a.Sub(b)
	den := (1 - a.Dot(a)) * (1 - b.Dot(b))
	return acosh(1 + 2*diff.Dot(diff)/den)
}

// KleinDistance is the hyperbolic distance between two points of the Klein
// ball. It is meant for diagnostics.
func KleinDistance(a, b mgl64.Vec3) float64 {
	den := math.Sqrt((1 - a.Dot(a)) * (1 - b.Dot(b)))
	return acosh((1 - a.Dot(b)) / den)
}

// acosh clamps rounding noise below 1 so coincident points give 0, not NaN.
func acosh(x float64) float64 {
	if x < 1 {
		return 0
	}
	return math.Acosh(x)
}
