package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileEuclidean(t *testing.T) {
	p, err := NewProfile(4)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.Curvature)
	assert.Equal(t, 0.5, p.KleinValue)
	assert.Equal(t, 0.5, p.CellWidth)
	assert.InDelta(t, math.Sqrt(0.5), p.PoincareCellDiagonal, 1e-12)
	assert.True(t, p.IsEuclidean())
	assert.Equal(t, "euclidean", p.Name())
}

func TestNewProfileCurvatureSign(t *testing.T) {
	tests := []struct {
		n    int
		want float64
		name string
	}{
		{3, Spherical, "spherical"},
		{4, Euclidean, "euclidean"},
		{5, Hyperbolic, "hyperbolic"},
		{6, Hyperbolic, "hyperbolic"},
		{12, Hyperbolic, "hyperbolic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfile(tt.n)
			require.NoError(t, err)
			if p.Curvature != tt.want {
				t.Errorf("NewProfile(%d).Curvature = %v, want %v", tt.n, p.Curvature, tt.want)
			}
			if p.Name() != tt.name {
				t.Errorf("NewProfile(%d).Name() = %q, want %q", tt.n, p.Name(), tt.name)
			}
			if p.TilesPerVertex != tt.n {
				t.Errorf("TilesPerVertex = %d, want %d", p.TilesPerVertex, tt.n)
			}
		})
	}
}

func TestNewProfileHyperbolicConstants(t *testing.T) {
	p := MustProfile(5)

	b := math.Pi / 5
	wantWidth := math.Acosh(math.Cos(b)/math.Sin(math.Pi/4)) - 1e-4
	assert.InDelta(t, wantWidth, p.CellWidth, 1e-12)

	// Klein vertex coordinate lies inside the unit ball and beyond the flat value.
	assert.Greater(t, p.KleinValue, 0.0)
	assert.Less(t, p.KleinValue, 1.0)
	assert.Greater(t, p.PoincareCellDiagonal, 0.0)
	assert.Less(t, p.PoincareCellDiagonal, 1.0)
}

func TestNewProfileSphericalConstants(t *testing.T) {
	p := MustProfile(3)

	b := math.Pi / 3
	wantWidth := math.Acos(math.Cos(b)/math.Sin(math.Pi/4)) + 1e-3
	assert.InDelta(t, wantWidth, p.CellWidth, 1e-12)
	assert.True(t, p.IsSpherical())
}

func TestNewProfileInvalid(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 2} {
		_, err := NewProfile(n)
		if err == nil {
			t.Fatalf("NewProfile(%d) error = nil, want error", n)
		}
		if !errors.Is(err, ErrInvalidTilesPerVertex) {
			t.Errorf("NewProfile(%d) error = %v, want ErrInvalidTilesPerVertex", n, err)
		}
	}
}

func TestNewProfileIdempotent(t *testing.T) {
	a := MustProfile(7)
	b := MustProfile(7)
	if a != b {
		t.Errorf("NewProfile(7) not deterministic: %v != %v", a, b)
	}
}

func TestMustProfilePanics(t *testing.T) {
	assert.Panics(t, func() { MustProfile(2) })
}

func TestRootScale(t *testing.T) {
	assert.Equal(t, 0.5, MustProfile(4).RootScale())

	p := MustProfile(5)
	assert.InDelta(t, math.Tanh(p.CellWidth), p.RootScale(), 1e-15)
}

func TestProfileString(t *testing.T) {
	if got := MustProfile(5).String(); got != "{4,5} hyperbolic" {
		t.Errorf("String() = %q, want %q", got, "{4,5} hyperbolic")
	}
}
