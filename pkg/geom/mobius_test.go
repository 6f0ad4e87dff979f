package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

// vecNear compares component-wise with an absolute tolerance.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

var sampleOffsets = []mgl64.Vec3{
	{0.1, 0, 0.2},
	{-0.3, 0.1, 0.4},
	{0.5, 0, -0.5},
	{0, 0, 0.7},
	{-0.05, -0.2, 0.01},
}

func sampleProfiles() []Profile {
	return []Profile{MustProfile(3), MustProfile(4), MustProfile(5), MustProfile(6), MustProfile(8)}
}

func TestMobiusAddEuclideanIsVectorAdd(t *testing.T) {
	p := MustProfile(4)
	for _, a := range sampleOffsets {
		for _, b := range sampleOffsets {
			if got, want := p.MobiusAdd(a, b), a.Add(b); got != want {
				t.Errorf("MobiusAdd(%v, %v) = %v, want %v", a, b, got, want)
			}
			if got := p.MobiusGyr(a, b); got != mgl64.QuatIdent() {
				t.Errorf("MobiusGyr(%v, %v) = %v, want identity", a, b, got)
			}
		}
	}
}

func TestMobiusAddZero(t *testing.T) {
	for _, p := range sampleProfiles() {
		for _, v := range sampleOffsets {
			assert.True(t, vecNear(p.MobiusAdd(mgl64.Vec3{}, v), v, eps), "%s: 0 ⊕ v", p)
			assert.True(t, vecNear(p.MobiusAdd(v, mgl64.Vec3{}), v, eps), "%s: v ⊕ 0", p)
		}
	}
}

func TestMobiusAddLeftCancellation(t *testing.T) {
	for _, p := range sampleProfiles() {
		for _, v := range sampleOffsets {
			got := p.MobiusAdd(v, v.Mul(-1))
			assert.True(t, vecNear(got, mgl64.Vec3{}, eps), "%s: v ⊕ -v = %v", p, got)
		}
	}
}

func TestMobiusAddIsNotCommutative(t *testing.T) {
	p := MustProfile(5)
	a := mgl64.Vec3{0.3, 0, 0}
	b := mgl64.Vec3{0, 0, 0.4}
	ab := p.MobiusAdd(a, b)
	ba := p.MobiusAdd(b, a)
	assert.False(t, vecNear(ab, ba, 1e-6))
	// Both sums have the same length; they differ by the gyration.
	assert.InDelta(t, ab.Len(), ba.Len(), eps)
}

func TestMobiusAddGyrMatchesSeparateOps(t *testing.T) {
	for _, p := range sampleProfiles() {
		for _, a := range sampleOffsets {
			for _, b := range sampleOffsets {
				sum, gyr := p.MobiusAddGyr(a, b)
				assert.True(t, vecNear(sum, p.MobiusAdd(a, b), eps))

				want := p.MobiusGyr(b, a)
				assert.InDelta(t, 1, math.Abs(gyr.Dot(want)), eps, "%s: gyr(%v, %v)", p, b, a)
			}
		}
	}
}

func TestMobiusGyrIsUnit(t *testing.T) {
	p := MustProfile(6)
	for _, a := range sampleOffsets {
		for _, b := range sampleOffsets {
			assert.InDelta(t, 1, p.MobiusGyr(a, b).Len(), eps)
		}
	}
}

func TestMobiusScalarMultiply(t *testing.T) {
	v := mgl64.Vec3{0.2, 0, 0.3}

	assert.True(t, vecNear(MobiusScalarMultiply(v, 1), v, eps))
	assert.Equal(t, mgl64.Vec3{}, MobiusScalarMultiply(mgl64.Vec3{}, 3))
	assert.True(t, vecNear(MobiusScalarMultiply(v, 0), mgl64.Vec3{}, eps))

	// Doubling along the geodesic is v ⊕ v in the hyperbolic ball.
	p := MustProfile(5)
	assert.True(t, vecNear(MobiusScalarMultiply(v, 2), p.MobiusAdd(v, v), eps))
}

func TestCurvatureTan(t *testing.T) {
	x := 0.4
	tests := []struct {
		n    int
		want float64
	}{
		{3, math.Tan(x)},
		{4, x},
		{5, math.Tanh(x)},
	}
	for _, tt := range tests {
		if got := MustProfile(tt.n).CurvatureTan(x); got != tt.want {
			t.Errorf("CurvatureTan(%v) with n=%d = %v, want %v", x, tt.n, got, tt.want)
		}
	}
}

func TestHyperTranslate(t *testing.T) {
	p := MustProfile(5)

	assert.Equal(t, mgl64.Vec3{}, p.HyperTranslate(0, 0))
	assert.Equal(t, mgl64.Vec3{}, p.HyperTranslate(1e-6, 0))

	got := p.HyperTranslate(0, p.CellWidth)
	assert.InDelta(t, 0, got[0], eps)
	assert.InDelta(t, math.Tanh(p.CellWidth), got[2], eps)

	flat := MustProfile(4).HyperTranslate(0.3, 0.4)
	assert.True(t, vecNear(flat, mgl64.Vec3{0.3, 0, 0.4}, eps))
}
