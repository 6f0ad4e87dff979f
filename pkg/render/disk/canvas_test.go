package disk

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

var numberRe = regexp.MustCompile(`-?[0-9]+(\.[0-9]+)?`)
var pathRe = regexp.MustCompile(`<path class="tile" d="([^"]*)"`)

func placedTiles(t *testing.T, p geom.Profile, depth int, opts ...tiling.Option) []tiling.Tile {
	t.Helper()
	opts = append([]tiling.Option{tiling.WithDepth(depth)}, opts...)
	res, err := tiling.Enumerate(context.Background(), reduce.Default(), opts...)
	require.NoError(t, err)
	tiles, err := tiling.Tiles(context.Background(), p, res)
	require.NoError(t, err)
	return tiles
}

func pathCoords(t *testing.T, svg string) [][]float64 {
	t.Helper()
	var out [][]float64
	for _, m := range pathRe.FindAllStringSubmatch(svg, -1) {
		var nums []float64
		for _, s := range numberRe.FindAllString(m[1], -1) {
			f, err := strconv.ParseFloat(s, 64)
			require.NoError(t, err)
			nums = append(nums, f)
		}
		out = append(out, nums)
	}
	return out
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		p    geom.Profile
		opt  Option
		code errors.Code
	}{
		{"unknown projection", geom.MustProfile(5), WithProjection("orthographic"), errors.ErrCodeInvalidProjection},
		{"klein sphere", geom.MustProfile(3), WithProjection(geom.Klein), errors.ErrCodeInvalidProjection},
		{"zero size", geom.MustProfile(5), WithSize(0), errors.ErrCodeInvalidConfig},
		{"no segments", geom.MustProfile(5), WithSegments(0), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.p, tt.opt)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCanvasEuclidean(t *testing.T) {
	p := geom.MustProfile(4)
	svg, err := RenderSVG(context.Background(), p, placedTiles(t, p, 1), WithSegments(1))
	require.NoError(t, err)
	out := string(svg)

	assert.Contains(t, out, `viewBox="0 0 800.0 800.0"`)
	assert.Contains(t, out, "<title>{4,4} euclidean, poincare projection</title>")
	assert.NotContains(t, out, `class="boundary"`)
	for _, w := range []string{"", "u", "ru", "lu", "rru"} {
		assert.Contains(t, out, `data-word="`+w+`"`)
	}

	paths := pathCoords(t, out)
	require.Len(t, paths, 5)
	for _, nums := range paths {
		assert.Len(t, nums, 8, "four corners per tile")
	}

	// The root tile is a square centred on the picture.
	root := paths[0]
	assert.InDelta(t, 800-root[0], root[2], 0.02)
	assert.InDelta(t, root[1], root[3], 0.02)
	assert.InDelta(t, 800-root[1], root[5], 0.02)
}

func TestCanvasHyperbolicStaysInDisk(t *testing.T) {
	p := geom.MustProfile(5)
	tiles := placedTiles(t, p, 3)
	for _, proj := range []geom.Projection{geom.Poincare, geom.Klein} {
		svg, err := RenderSVG(context.Background(), p, tiles, WithProjection(proj), WithSize(400))
		require.NoError(t, err)
		out := string(svg)
		assert.Contains(t, out, `class="boundary"`)

		paths := pathCoords(t, out)
		require.Len(t, paths, len(tiles))
		for _, nums := range paths {
			require.Len(t, nums, 2*4*DefaultSegments)
			for i := 0; i < len(nums); i += 2 {
				dx, dy := nums[i]-200, nums[i+1]-200
				assert.LessOrEqual(t, math.Hypot(dx, dy), 200.01, "%s point outside disk", proj)
			}
		}
	}
}

func TestCanvasSphere(t *testing.T) {
	p := geom.MustProfile(3)
	c, err := New(p)
	require.NoError(t, err)
	_, err = tiling.Place(context.Background(), p, mustResult(t, 1), c)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 0, c.Skipped())
}

func mustResult(t *testing.T, depth int) *tiling.Result {
	t.Helper()
	res, err := tiling.Enumerate(context.Background(), reduce.Default(), tiling.WithDepth(depth))
	require.NoError(t, err)
	return res
}

func TestCanvasKindsAndLabels(t *testing.T) {
	p := geom.MustProfile(4)
	tiles := placedTiles(t, p, 1, tiling.WithSpecialTiles(
		tiling.SpecialTile{Word: "u", Kind: "goal"},
		tiling.SpecialTile{Word: "ru", Kind: "lava"},
	))
	svg, err := RenderSVG(context.Background(), p, tiles, WithKindColor("goal", "#ff0000"), WithLabels())
	require.NoError(t, err)
	out := string(svg)

	assert.Contains(t, out, `fill="#ff0000" stroke="#333"`)
	assert.Contains(t, out, `data-kind="goal"`)
	assert.Contains(t, out, `data-kind="lava"`)
	assert.Contains(t, out, ">(origin)</text>")
	assert.Contains(t, out, ">rru</text>")
	assert.Equal(t, 5, strings.Count(out, "</text>"))
}

func TestCanvasSkipsUnprojectable(t *testing.T) {
	c, err := New(geom.MustProfile(5))
	require.NoError(t, err)

	bad := tiling.Tile{Word: "u", Gyro: geom.NewGyroVector(mgl64.Vec3{math.NaN(), 0, 0})}
	require.NoError(t, c.Place(context.Background(), bad))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, c.Skipped())
}

func TestCanvasPlaceCancelled(t *testing.T) {
	c, err := New(geom.MustProfile(5))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Place(ctx, tiling.Tile{Gyro: geom.Identity}), context.Canceled)
}
