// Package navigate moves a viewpoint through a curved tiling.
//
// A [Viewpoint] keeps a running gyrovector. Every move composes a step in
// the viewer's local frame; the holonomy picked up by the step is folded into
// the viewer's heading so the gyrovector itself stays a pure offset.
package navigate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/hypertile/pkg/geom"
)

// Defaults for a new Viewpoint.
const (
	DefaultHeight = 0.06

	// DefaultClampDistance keeps the hyperbolic offset inside the ball where
	// single precision renderers still resolve tiles.
	DefaultClampDistance = 0.9992799
)

// Up is the vertical axis. Moves happen in the plane orthogonal to it.
var Up = mgl64.Vec3{0, 1, 0}

// Viewpoint is the observer's place in the tiling. The zero value is not
// usable; create one with New.
type Viewpoint struct {
	profile geom.Profile
	gyro    geom.GyroVector
	heading mgl64.Quat
	height  float64
	clamp   float64
	lost    bool
}

// Option configures a Viewpoint.
type Option func(*Viewpoint)

// WithHeight sets the eye height above the tiling.
func WithHeight(h float64) Option {
	return func(v *Viewpoint) { v.height = h }
}

// WithClampDistance sets how far from the origin a hyperbolic offset may
// grow. Zero disables clamping.
func WithClampDistance(d float64) Option {
	return func(v *Viewpoint) { v.clamp = d }
}

// New returns a Viewpoint at the origin tile facing +z.
func New(p geom.Profile, opts ...Option) *Viewpoint {
	v := &Viewpoint{
		profile: p,
		gyro:    geom.Identity,
		heading: mgl64.QuatIdent(),
		height:  DefaultHeight,
		clamp:   DefaultClampDistance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Move walks distance along direction, given in the viewer's frame
// (+z forward, +x right). It reports whether the offset had to be clamped,
// which means the viewer walked into the fog at the edge of the ball.
func (v *Viewpoint) Move(direction mgl64.Vec3, distance float64) bool {
	if direction.Len() < 1e-9 || distance == 0 {
		return false
	}
	step := v.heading.Rotate(direction.Normalize()).Mul(distance)

	v.gyro = v.profile.Translate(v.gyro, step)

	// Fold the holonomy into the heading.
	v.heading = v.heading.Mul(v.gyro.Gyration.Inverse()).Normalize()
	v.gyro.Gyration = mgl64.QuatIdent()

	v.gyro.Position[1] = 0

	clamped := false
	if v.profile.IsHyperbolic() && v.clamp > 0 {
		if m := v.gyro.Position.Len(); m > v.clamp {
			v.gyro.Position = v.gyro.Position.Mul(v.clamp / m)
			clamped = true
		}
	}
	v.lost = clamped
	return clamped
}

// Turn rotates the heading about the vertical axis. Positive angles turn
// right.
func (v *Viewpoint) Turn(radians float64) {
	v.heading = v.heading.Mul(mgl64.QuatRotate(radians, Up)).Normalize()
}

// Climb changes the eye height.
func (v *Viewpoint) Climb(dh float64) {
	v.height += dh
}

// Position is the current offset from the origin tile.
func (v *Viewpoint) Position() mgl64.Vec3 { return v.gyro.Position }

// Gyro is the current motion from the origin tile.
func (v *Viewpoint) Gyro() geom.GyroVector { return v.gyro }

// Heading is the viewer's orientation.
func (v *Viewpoint) Heading() mgl64.Quat { return v.heading }

// Height is the eye height.
func (v *Viewpoint) Height() float64 { return v.height }

// LostInFog reports whether the last move was clamped.
func (v *Viewpoint) LostInFog() bool { return v.lost }

// HeadingDegrees is the heading as a compass angle in [0, 360), 0 facing +z
// and 90 facing +x.
func (v *Viewpoint) HeadingDegrees() float64 {
	f := v.heading.Rotate(mgl64.Vec3{0, 0, 1})
	deg := math.Atan2(f[0], f[2]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// GlobalOffset is the translation a renderer applies to the whole scene:
// the negated offset, lowered by the eye height.
func (v *Viewpoint) GlobalOffset() mgl64.Vec3 {
	return v.gyro.Position.Mul(-1).Sub(Up.Mul(v.height))
}

// RenderGlobals are the values a renderer needs besides tile geometry.
type RenderGlobals struct {
	Curvature  float64    `json:"curvature"`
	KleinValue float64    `json:"klein_value"`
	CellWidth  float64    `json:"cell_width"`
	Offset     mgl64.Vec3 `json:"offset"`
}

// Globals returns the current render globals.
func (v *Viewpoint) Globals() RenderGlobals {
	return RenderGlobals{
		Curvature:  v.profile.Curvature,
		KleinValue: v.profile.KleinValue,
		CellWidth:  v.profile.CellWidth,
		Offset:     v.GlobalOffset(),
	}
}
