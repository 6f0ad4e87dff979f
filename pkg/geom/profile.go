package geom

import (
	"errors"
	"fmt"
	"math"
)

// Curvature classes.
const (
	Spherical  = 1.0
	Euclidean  = 0.0
	Hyperbolic = -1.0
)

// MinTilesPerVertex is the smallest number of squares that can meet at a vertex.
const MinTilesPerVertex = 3

// Seam-hiding nudges applied to the cell width of curved tilings.
const (
	hyperbolicSeam = 1e-4
	sphericalSeam  = 1e-3
)

// ErrInvalidTilesPerVertex is returned when fewer than three squares meet at a vertex.
var ErrInvalidTilesPerVertex = errors.New("geom: tiles per vertex must be at least 3")

// Profile holds the curvature constants of a square tiling with a given number
// of tiles meeting at every vertex. A Profile is an immutable value: every
// geometry operation reads it and none modifies it.
type Profile struct {
	// TilesPerVertex is the configuration input the constants derive from.
	TilesPerVertex int `json:"tiles_per_vertex" bson:"tiles_per_vertex"`

	// Curvature is -1 (hyperbolic), 0 (euclidean) or +1 (spherical).
	Curvature float64 `json:"curvature" bson:"curvature"`

	// CellWidth is the distance from a tile center to the middle of an edge.
	CellWidth float64 `json:"cell_width" bson:"cell_width"`

	// PoincareCellDiagonal is the distance from a tile center to a vertex in
	// Poincaré coordinates.
	PoincareCellDiagonal float64 `json:"poincare_cell_diagonal" bson:"poincare_cell_diagonal"`

	// KleinValue is the coordinate of each tile vertex in Klein coordinates.
	KleinValue float64 `json:"klein_value" bson:"klein_value"`
}

// NewProfile computes the curvature constants for tilesPerVertex squares
// meeting at each vertex. Four gives the flat square grid, fewer gives a
// sphere and more gives the hyperbolic plane.
func NewProfile(tilesPerVertex int) (Profile, error) {
	if tilesPerVertex < MinTilesPerVertex {
		return Profile{}, fmt.Errorf("%w: got %d", ErrInvalidTilesPerVertex, tilesPerVertex)
	}

	p := Profile{TilesPerVertex: tilesPerVertex}
	if tilesPerVertex == 4 {
		p.Curvature = Euclidean
		p.KleinValue = 0.5
		p.CellWidth = 0.5
		p.PoincareCellDiagonal = math.Sqrt(0.5)
		return p, nil
	}

	p.Curvature = Hyperbolic
	if tilesPerVertex < 4 {
		p.Curvature = Spherical
	}

	n := float64(tilesPerVertex)
	a := math.Pi / 4
	b := math.Pi / n
	c := math.Cos(a) * math.Cos(b) / (math.Sin(a) * math.Sin(b))
	s := math.Sqrt(0.5 * math.Abs(c-1) / (c + 1))

	p.PoincareCellDiagonal = math.Sqrt2 * s
	p.KleinValue = s/(0.5-p.Curvature*s*s) + 3e-4/n

	if p.Curvature < 0 {
		p.CellWidth = math.Acosh(math.Cos(b)/math.Sin(a)) - hyperbolicSeam
	} else {
		p.CellWidth = math.Acos(math.Cos(b)/math.Sin(a)) + sphericalSeam
	}
	return p, nil
}

// MustProfile is like NewProfile but panics on invalid input.
// It is intended for package-level variables and tests.
func MustProfile(tilesPerVertex int) Profile {
	p, err := NewProfile(tilesPerVertex)
	if err != nil {
		panic(err)
	}
	return p
}

// IsHyperbolic reports whether the profile describes negative curvature.
func (p Profile) IsHyperbolic() bool { return p.Curvature < 0 }

// IsSpherical reports whether the profile describes positive curvature.
func (p Profile) IsSpherical() bool { return p.Curvature > 0 }

// IsEuclidean reports whether the profile describes a flat tiling.
func (p Profile) IsEuclidean() bool { return p.Curvature == 0 }

// Name returns "hyperbolic", "euclidean" or "spherical".
func (p Profile) Name() string {
	switch {
	case p.IsHyperbolic():
		return "hyperbolic"
	case p.IsSpherical():
		return "spherical"
	default:
		return "euclidean"
	}
}

// RootScale is the scale applied to a unit tile at the origin so its edges
// land on the neighbouring tiles.
func (p Profile) RootScale() float64 {
	return p.CurvatureTan(p.CellWidth)
}

// String returns a compact description, e.g. "{4,5} hyperbolic".
func (p Profile) String() string {
	return fmt.Sprintf("{4,%d} %s", p.TilesPerVertex, p.Name())
}
