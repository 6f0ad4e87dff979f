package navigate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Distance measures how far apart two tile offsets are under p: the
// hyperbolic distance in the Poincaré ball, straight line distance otherwise.
func Distance(p geom.Profile, a, b mgl64.Vec3) float64 {
	if p.IsHyperbolic() {
		return geom.PoincareDistance(a, b)
	}
	return a.Sub(b).Len()
}

// Nearest returns the tile whose center is closest to the viewer and its
// distance. ok is false when tiles is empty.
func (v *Viewpoint) Nearest(tiles []tiling.Tile) (tile tiling.Tile, dist float64, ok bool) {
	dist = math.Inf(1)
	for _, t := range tiles {
		d := Distance(v.profile, v.Position(), t.Gyro.Position)
		if d < dist {
			tile, dist, ok = t, d, true
		}
	}
	return tile, dist, ok
}
