package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPoincareDistanceFromOrigin(t *testing.T) {
	for _, r := range []float64{0.1, 0.5, 0.9} {
		v := mgl64.Vec3{r, 0, 0}
		assert.InDelta(t, 2*math.Atanh(r), PoincareDistance(mgl64.Vec3{}, v), 1e-9)
	}
}

func TestKleinDistanceFromOrigin(t *testing.T) {
	for _, r := range []float64{0.1, 0.5, 0.9} {
		v := mgl64.Vec3{0, 0, r}
		assert.InDelta(t, math.Atanh(r), KleinDistance(mgl64.Vec3{}, v), 1e-9)
	}
}

func TestDistanceOfSamePointIsZero(t *testing.T) {
	v := mgl64.Vec3{0.3, 0.1, -0.2}
	assert.Equal(t, 0.0, PoincareDistance(v, v))
	assert.InDelta(t, 0, KleinDistance(v, v), 1e-6)
}

func TestDistanceAgreesAcrossModels(t *testing.T) {
	p := MustProfile(5)
	for _, a := range sampleOffsets {
		for _, b := range sampleOffsets {
			want := PoincareDistance(a, b)
			got := KleinDistance(p.PoincareToKlein(a), p.PoincareToKlein(b))
			assert.InDelta(t, want, got, 1e-6, "d(%v, %v)", a, b)
		}
	}
}

func TestNeighbourDistanceIsTwiceCellWidth(t *testing.T) {
	p := MustProfile(5)
	gv := p.TileCoordToGyroVector("u")
	assert.InDelta(t, 2*p.CellWidth, PoincareDistance(mgl64.Vec3{}, gv.Position), 1e-9)
}
