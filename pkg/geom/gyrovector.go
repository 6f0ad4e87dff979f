package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GyroVector is a rigid motion of curved space: an offset from the origin
// followed by the holonomy rotation accumulated while composing offsets.
//
// GyroVectors are values. Composition is neither commutative nor associative,
// mirroring the motions they describe, and it depends on the curvature, so the
// composition methods live on Profile.
type GyroVector struct {
	Position mgl64.Vec3 `json:"position" bson:"position"`
	Gyration mgl64.Quat `json:"gyration" bson:"gyration"`
}

// Identity is the motion that leaves every point in place.
var Identity = GyroVector{Gyration: mgl64.QuatIdent()}

// NewGyroVector returns a pure offset with no holonomy.
func NewGyroVector(position mgl64.Vec3) GyroVector {
	return GyroVector{Position: position, Gyration: mgl64.QuatIdent()}
}

// Translate composes gv with a translation expressed in gv's local frame.
// The translation is first rotated by the inverse holonomy so that the step
// is taken along the un-rotated axes.
func (p Profile) Translate(gv GyroVector, translation mgl64.Vec3) GyroVector {
	pos, post := p.MobiusAddGyr(gv.Position, gv.Gyration.Inverse().Rotate(translation))
	return GyroVector{Position: pos, Gyration: gv.Gyration.Mul(post)}
}

// PreTranslate composes a translation on the left of gv.
func (p Profile) PreTranslate(translation mgl64.Vec3, gv GyroVector) GyroVector {
	pos, post := p.MobiusAddGyr(translation, gv.Position)
	return GyroVector{Position: pos, Gyration: gv.Gyration.Mul(post)}
}

// Compose returns a + b: first a, then b expressed in a's local frame.
func (p Profile) Compose(a, b GyroVector) GyroVector {
	pos, post := p.MobiusAddGyr(a.Position, a.Gyration.Inverse().Rotate(b.Position))
	return GyroVector{Position: pos, Gyration: b.Gyration.Mul(a.Gyration).Mul(post)}
}

// Sub returns a + (-b).
func (p Profile) Sub(a, b GyroVector) GyroVector {
	return p.Compose(a, b.Neg())
}

// Untranslate composes gv with the opposite of a translation.
func (p Profile) Untranslate(gv GyroVector, translation mgl64.Vec3) GyroVector {
	return p.Translate(gv, translation.Mul(-1))
}

// Apply maps point through the full motion: gyration · (position ⊕ point).
func (p Profile) Apply(gv GyroVector, point mgl64.Vec3) mgl64.Vec3 {
	return gv.Gyration.Rotate(p.MobiusAdd(gv.Position, point))
}

// Neg returns the inverse motion. Composing gv with gv.Neg() yields Identity
// up to rounding.
func (gv GyroVector) Neg() GyroVector {
	return GyroVector{
		Position: gv.Gyration.Rotate(gv.Position).Mul(-1),
		Gyration: gv.Gyration.Inverse(),
	}
}

// Scale moves the offset along its geodesic by the factor r, keeping the
// holonomy.
func (gv GyroVector) Scale(r float64) GyroVector {
	return GyroVector{Position: MobiusScalarMultiply(gv.Position, r), Gyration: gv.Gyration}
}

// ApproxEqual reports whether the offsets agree within eps per component and the
// gyrations describe the same rotation. A quaternion and its negation are
// the same rotation.
func (gv GyroVector) ApproxEqual(other GyroVector, eps float64) bool {
	for i := range gv.Position {
		if math.Abs(gv.Position[i]-other.Position[i]) > eps {
			return false
		}
	}
	a := gv.Gyration.Normalize()
	b := other.Gyration.Normalize()
	return math.Abs(math.Abs(a.Dot(b))-1) <= eps
}

// String formats the offset and the gyration (x, y, z, w) with nine decimals.
func (gv GyroVector) String() string {
	return fmt.Sprintf("(%.9f, %.9f, %.9f) [%.9f, %.9f, %.9f, %.9f]",
		gv.Position[0], gv.Position[1], gv.Position[2],
		gv.Gyration.V[0], gv.Gyration.V[1], gv.Gyration.V[2], gv.Gyration.W)
}

// SameTile reports whether gv and other carry the origin tile onto the same
// tile. The offsets must agree within eps; the gyrations may differ by a
// quarter turn about the vertical axis, a symmetry of the square.
func (gv GyroVector) SameTile(other GyroVector, eps float64) bool {
	for i := range gv.Position {
		if math.Abs(gv.Position[i]-other.Position[i]) > eps {
			return false
		}
	}
	rel := gv.Gyration.Mul(other.Gyration.Inverse()).Normalize()
	up := mgl64.Vec3{0, 1, 0}
	if rel.Rotate(up).Sub(up).Len() > eps {
		return false
	}
	x := rel.Rotate(mgl64.Vec3{1, 0, 0})
	for _, axis := range squareAxes {
		if x.Sub(axis).Len() <= eps {
			return true
		}
	}
	return false
}

// squareAxes are the images of +x under the symmetries of a square.
var squareAxes = [4]mgl64.Vec3{{1, 0, 0}, {0, 0, 1}, {-1, 0, 0}, {0, 0, -1}}
