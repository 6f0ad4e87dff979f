package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Projection names a ball model used to display curved space.
type Projection string

// Supported projections.
const (
	Poincare Projection = "poincare"
	Klein    Projection = "klein"
)

// ValidProjections is the set of supported projections.
var ValidProjections = map[Projection]bool{
	Poincare: true,
	Klein:    true,
}

// UnitToKlein scales tile-local unit coordinates (vertices at ±1) to Klein
// coordinates.
func (p Profile) UnitToKlein(u mgl64.Vec3) mgl64.Vec3 {
	return u.Mul(p.KleinValue)
}

// KleinToUnit is the inverse of UnitToKlein.
func (p Profile) KleinToUnit(k mgl64.Vec3) mgl64.Vec3 {
	return k.Mul(1 / p.KleinValue)
}

// KleinToPoincare converts Klein coordinates to Poincaré coordinates.
func (p Profile) KleinToPoincare(k mgl64.Vec3) mgl64.Vec3 {
	return k.Mul(1 / (math.Sqrt(1+p.Curvature*k.Dot(k)) + 1))
}

// PoincareToKlein converts Poincaré coordinates to Klein coordinates.
func (p Profile) PoincareToKlein(v mgl64.Vec3) mgl64.Vec3 {
	return v.Mul(2 / (1 - p.Curvature*v.Dot(v)))
}

// UnitToPoincare converts tile-local unit coordinates to Poincaré coordinates.
func (p Profile) UnitToPoincare(u mgl64.Vec3) mgl64.Vec3 {
	return p.KleinToPoincare(p.UnitToKlein(u))
}

// PoincareToUnit is the inverse of UnitToPoincare.
func (p Profile) PoincareToUnit(v mgl64.Vec3) mgl64.Vec3 {
	return p.KleinToUnit(p.PoincareToKlein(v))
}

// PoincareToUnitScaleFactor is the local scale between Poincaré and unit
// coordinates at v. Only the XZ plane contributes.
func (p Profile) PoincareToUnitScaleFactor(v mgl64.Vec3) float64 {
	return 0.5 * p.KleinValue * math.Abs(1+p.Curvature*(v[0]*v[0]+v[2]*v[2]))
}

// PlaceVertex maps a point of the root tile, given in Klein coordinates, to
// the Klein coordinates of the same point on the tile moved by gv. The point
// passes through the Poincaré model where gyrovector composition applies.
// With zero curvature Klein coordinates are Poincaré coordinates doubled.
func (p Profile) PlaceVertex(gv GyroVector, local mgl64.Vec3) mgl64.Vec3 {
	return p.PoincareToKlein(p.PlacePoint(gv, p.KleinToPoincare(local)))
}

// PlacePoint is PlaceVertex in Poincaré coordinates.
func (p Profile) PlacePoint(gv GyroVector, local mgl64.Vec3) mgl64.Vec3 {
	return p.Translate(gv, local).Position
}

// Project converts a Poincaré point to the requested display projection.
// The Klein projection of a spherical tiling only covers the near
// hemisphere.
func (p Profile) Project(v mgl64.Vec3, proj Projection) mgl64.Vec3 {
	if proj == Klein {
		return p.PoincareToKlein(v)
	}
	return v
}
