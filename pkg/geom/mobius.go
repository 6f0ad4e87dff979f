package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// zeroThreshold is the magnitude under which a vector counts as no movement.
const zeroThreshold = 1e-5

// MobiusAdd is the curvature dependent, non-commutative and non-associative
// analogue of vector addition. With zero curvature it is a + b.
//
// This form is numerically more stable than the textbook one.
func (p Profile) MobiusAdd(a, b mgl64.Vec3) mgl64.Vec3 {
	c := a.Cross(b).Mul(p.Curvature)
	d := 1 - p.Curvature*a.Dot(b)
	t := a.Add(b)
	return t.Mul(d).Add(c.Cross(t)).Mul(1 / (d*d + c.Dot(c)))
}

// MobiusGyr returns the gyration of a and b, the rotation left over when the
// two offsets are composed. It equals AngleAxis(180°, a⊕b) · AngleAxis(180°, a+b)
// but is computed directly from the cross and dot products.
func (p Profile) MobiusGyr(a, b mgl64.Vec3) mgl64.Quat {
	c := a.Cross(b).Mul(p.Curvature)
	d := 1 - p.Curvature*a.Dot(b)
	return mgl64.Quat{W: d, V: c}.Normalize()
}

// MobiusAddGyr computes MobiusAdd(a, b) and the gyration MobiusGyr(b, a) in
// one pass. The two results must come from the same intermediate values;
// deriving the rotation from the rounded sum loses precision.
func (p Profile) MobiusAddGyr(a, b mgl64.Vec3) (mgl64.Vec3, mgl64.Quat) {
	c := a.Cross(b).Mul(p.Curvature)
	d := 1 - p.Curvature*a.Dot(b)
	t := a.Add(b)
	sum := t.Mul(d).Add(c.Cross(t)).Mul(1 / (d*d + c.Dot(c)))
	gyr := mgl64.Quat{W: -d, V: c}.Normalize()
	return sum, gyr
}

// MobiusScalarMultiply scales v along the geodesic through the origin:
// tanh(r·atanh(|v|))·v/|v|. A zero-length v stays at the origin.
func MobiusScalarMultiply(v mgl64.Vec3, r float64) mgl64.Vec3 {
	m := v.Len()
	if m < zeroThreshold {
		return mgl64.Vec3{}
	}
	return v.Mul(math.Tanh(r*math.Atanh(m)) / m)
}

// CurvatureTan is tan on the sphere, tanh in the hyperbolic plane and the
// identity on the flat plane.
func (p Profile) CurvatureTan(x float64) float64 {
	switch {
	case p.Curvature > 0:
		return math.Tan(x)
	case p.Curvature < 0:
		return math.Tanh(x)
	default:
		return x
	}
}

// HyperTranslate turns a step of the given length on the XZ plane into an
// offset vector whose magnitude accounts for curvature.
func (p Profile) HyperTranslate(dx, dz float64) mgl64.Vec3 {
	return p.HyperTranslateVec(mgl64.Vec3{dx, 0, dz})
}

// HyperTranslateVec is HyperTranslate for an arbitrary 3D step.
func (p Profile) HyperTranslateVec(step mgl64.Vec3) mgl64.Vec3 {
	m := step.Len()
	if m < zeroThreshold {
		return mgl64.Vec3{}
	}
	return step.Mul(p.CurvatureTan(m) / m)
}
