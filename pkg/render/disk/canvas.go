package disk

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"math"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Defaults for a new Canvas.
const (
	DefaultSize     = 800.0
	DefaultSegments = 8

	// maxExtent bounds the visible region of unbounded views. Spherical
	// tiles near the antipode run off to infinity.
	maxExtent = 4.0
)

// Fill colors. Generated tiles alternate by ring; special kinds without a
// configured color pick one from kindPalette.
var (
	ringColors  = [2]string{"#f4f1de", "#e3dcc2"}
	kindPalette = []string{"#e07a5f", "#81b29a", "#f2cc8f", "#3d405b", "#9c89b8", "#5e9ad1"}
)

// Option configures a Canvas.
type Option func(*Canvas)

// WithProjection selects the disk model. The default is geom.Poincare.
func WithProjection(proj geom.Projection) Option {
	return func(c *Canvas) { c.proj = proj }
}

// WithSize sets the width and height of the picture in pixels.
func WithSize(px float64) Option {
	return func(c *Canvas) { c.size = px }
}

// WithSegments sets how many pieces each tile edge is split into. Edges are
// straight in the Klein model, so more pieces only matter for the Poincaré
// model where they approximate arcs.
func WithSegments(n int) Option {
	return func(c *Canvas) { c.segments = n }
}

// WithLabels writes each tile's canonical coordinate into it.
func WithLabels() Option {
	return func(c *Canvas) { c.labels = true }
}

// WithKindColor sets the fill of tiles of the given kind.
func WithKindColor(kind, color string) Option {
	return func(c *Canvas) { c.colors[kind] = color }
}

// Canvas collects tile outlines. It is safe for concurrent use.
type Canvas struct {
	profile  geom.Profile
	proj     geom.Projection
	size     float64
	segments int
	labels   bool
	colors   map[string]string

	mu      sync.Mutex
	polys   []polygon
	skipped int
}

type polygon struct {
	word   string
	kind   string
	ring   int
	index  int
	points []mgl64.Vec3
	center mgl64.Vec3
}

// New returns an empty Canvas for tiles of profile p.
func New(p geom.Profile, opts ...Option) (*Canvas, error) {
	c := &Canvas{
		profile:  p,
		proj:     geom.Poincare,
		size:     DefaultSize,
		segments: DefaultSegments,
		colors:   map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !geom.ValidProjections[c.proj] {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "unknown projection %q", c.proj)
	}
	if c.proj == geom.Klein && p.IsSpherical() {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "the klein projection cannot show a spherical tiling")
	}
	if c.size <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "canvas size must be positive, got %v", c.size)
	}
	if c.segments < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "segments must be at least 1, got %d", c.segments)
	}
	return c, nil
}

// Place records the outline of t. Tiles whose outline cannot be projected
// are counted in Skipped and otherwise ignored.
func (c *Canvas) Place(ctx context.Context, t tiling.Tile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	poly := polygon{
		word:   t.Word,
		kind:   t.Kind,
		ring:   t.Ring,
		index:  t.Index,
		points: c.outline(t.Gyro),
		center: c.project(t.Gyro, mgl64.Vec3{}),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !finite(poly.center) || slices.ContainsFunc(poly.points, func(v mgl64.Vec3) bool { return !finite(v) }) {
		c.skipped++
		return nil
	}
	c.polys = append(c.polys, poly)
	return nil
}

// Len is the number of tiles drawn.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.polys)
}

// Skipped is the number of tiles that could not be drawn.
func (c *Canvas) Skipped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipped
}

// outline walks the root tile's boundary counterclockwise from the +x,+z
// corner and maps every sample onto the tile moved by gv.
func (c *Canvas) outline(gv geom.GyroVector) []mgl64.Vec3 {
	k := c.profile.KleinValue
	corners := [4]mgl64.Vec3{{k, 0, k}, {-k, 0, k}, {-k, 0, -k}, {k, 0, -k}}

	points := make([]mgl64.Vec3, 0, 4*c.segments)
	for i, from := range corners {
		to := corners[(i+1)%4]
		for s := 0; s < c.segments; s++ {
			f := float64(s) / float64(c.segments)
			local := from.Mul(1 - f).Add(to.Mul(f))
			points = append(points, c.project(gv, local))
		}
	}
	return points
}

// project maps a root-tile point in Klein coordinates to the display plane.
func (c *Canvas) project(gv geom.GyroVector, local mgl64.Vec3) mgl64.Vec3 {
	p := c.profile.PlacePoint(gv, c.profile.KleinToPoincare(local))
	return c.profile.Project(p, c.proj)
}

func finite(v mgl64.Vec3) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// extent is the half-width of the visible region in model units.
func (c *Canvas) extent() float64 {
	if c.profile.IsHyperbolic() {
		return 1
	}
	m := 0.0
	for _, poly := range c.polys {
		for _, v := range poly.points {
			m = max(m, math.Abs(v[0]), math.Abs(v[2]))
		}
	}
	if m == 0 {
		return 1
	}
	return min(m*1.05, maxExtent)
}

// SVG renders the collected tiles. +x points right and +z points up.
func (c *Canvas) SVG() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	polys := slices.Clone(c.polys)
	slices.SortFunc(polys, func(a, b polygon) int { return cmp.Compare(a.index, b.index) })

	ext := c.extent()
	half := c.size / 2
	toScreen := func(v mgl64.Vec3) (float64, float64) {
		return half + v[0]/ext*half, half - v[2]/ext*half
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.size, c.size, c.size, c.size)
	fmt.Fprintf(&buf, "  <title>%s, %s projection</title>\n", html.EscapeString(c.profile.String()), c.proj)

	if c.profile.IsHyperbolic() {
		fmt.Fprintf(&buf, `  <circle class="boundary" cx="%.2f" cy="%.2f" r="%.2f" fill="#222" stroke="none"/>`+"\n", half, half, half)
	}

	for _, poly := range polys {
		buf.WriteString(`  <path class="tile" d="`)
		for i, v := range poly.points {
			x, y := toScreen(v)
			if i == 0 {
				fmt.Fprintf(&buf, "M%.2f %.2f", x, y)
			} else {
				fmt.Fprintf(&buf, " L%.2f %.2f", x, y)
			}
		}
		fmt.Fprintf(&buf, ` Z" fill="%s" stroke="#333" stroke-width="%.2f" data-word="%s" data-kind="%s" data-ring="%d"/>`+"\n",
			c.fill(poly), c.strokeWidth(poly, ext), poly.word, html.EscapeString(poly.kind), poly.ring)
	}

	if c.labels {
		for _, poly := range polys {
			c.writeLabel(&buf, poly, ext, toScreen)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (c *Canvas) fill(poly polygon) string {
	if color, ok := c.colors[poly.kind]; ok {
		return html.EscapeString(color)
	}
	if poly.kind == "" || poly.kind == tiling.KindDefault {
		return ringColors[poly.ring%2]
	}
	h := fnv.New32a()
	h.Write([]byte(poly.kind))
	return kindPalette[h.Sum32()%uint32(len(kindPalette))]
}

// tileSpan is the rough width of poly on screen.
func (c *Canvas) tileSpan(poly polygon, ext float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range poly.points {
		lo, hi = min(lo, v[0]), max(hi, v[0])
	}
	return (hi - lo) / ext * c.size / 2
}

func (c *Canvas) strokeWidth(poly polygon, ext float64) float64 {
	return min(1.5, max(0.1, c.tileSpan(poly, ext)/40))
}

func (c *Canvas) writeLabel(buf *bytes.Buffer, poly polygon, ext float64, toScreen func(mgl64.Vec3) (float64, float64)) {
	label := reduce.Display(poly.word)
	size := c.tileSpan(poly, ext) / float64(max(len(label), 4)) * 1.4
	if size < 4 {
		return
	}
	x, y := toScreen(poly.center)
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="monospace" font-size="%.1f" text-anchor="middle" dominant-baseline="central" fill="#333">%s</text>`+"\n",
		x, y, size, html.EscapeString(label))
}
