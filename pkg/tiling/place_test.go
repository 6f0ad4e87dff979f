package tiling

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
)

func TestPlaceEuclidean(t *testing.T) {
	res, err := Enumerate(context.Background(), reduce.Default(), WithDepth(1))
	require.NoError(t, err)

	var c Collector
	n, err := Place(context.Background(), geom.MustProfile(4), res, &c)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	want := map[string]mgl64.Vec3{
		"":    {0, 0, 0},
		"u":   {0, 0, 0.5},
		"ru":  {0.5, 0, 0},
		"lu":  {-0.5, 0, 0},
		"rru": {0, 0, -0.5},
	}
	for i, tile := range c.Tiles {
		assert.Equal(t, i, tile.Index)
		assert.Equal(t, KindDefault, tile.Kind)
		pos, ok := want[tile.Word]
		require.True(t, ok, "unexpected tile %q", tile.Word)
		for j := range pos {
			assert.InDelta(t, pos[j], tile.Gyro.Position[j], 1e-9, "%q at %v, want %v", tile.Word, tile.Gyro.Position, pos)
		}
	}
	assert.Equal(t, 0, c.Tiles[0].Ring)
	assert.Equal(t, 1, c.Tiles[1].Ring)
}

func TestPlaceSpecialFirst(t *testing.T) {
	res, err := Enumerate(context.Background(), reduce.Default(),
		WithDepth(1), WithSpecialTiles(SpecialTile{Word: "u", Kind: "goal"}))
	require.NoError(t, err)

	var c Collector
	_, err = Place(context.Background(), geom.MustProfile(5), res, &c)
	require.NoError(t, err)

	require.Len(t, c.Tiles, 5)
	assert.Equal(t, Tile{Word: "u", Kind: "goal", Ring: 1, Index: 0, Gyro: c.Tiles[0].Gyro}, c.Tiles[0])
	for _, tile := range c.Tiles[1:] {
		assert.NotEqual(t, "u", tile.Word)
	}
}

func TestPlaceHyperbolicStaysInBall(t *testing.T) {
	res, err := Enumerate(context.Background(), reduce.Default(), WithDepth(3))
	require.NoError(t, err)

	tiles, err := Tiles(context.Background(), geom.MustProfile(5), res)
	require.NoError(t, err)
	require.Len(t, tiles, len(res.Placed))
	for _, tile := range tiles {
		assert.Less(t, tile.Gyro.Position.Len(), 1.0, tile.Word)
	}
}

func TestPlaceSinkError(t *testing.T) {
	res, err := Enumerate(context.Background(), reduce.Default(), WithDepth(1))
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	sink := SinkFunc(func(_ context.Context, t Tile) error {
		calls++
		if t.Word == "ru" {
			return boom
		}
		return nil
	})
	n, err := Place(context.Background(), geom.MustProfile(4), res, sink)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, calls)
}

func TestMulti(t *testing.T) {
	var a, b Collector
	sink := Multi(&a, &b)
	require.NoError(t, sink.Place(context.Background(), Tile{Word: "u"}))
	assert.Len(t, a.Tiles, 1)
	assert.Len(t, b.Tiles, 1)
}

func TestTilesCancelled(t *testing.T) {
	res, err := Enumerate(context.Background(), reduce.Default(), WithDepth(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Tiles(ctx, geom.MustProfile(5), res)
	assert.ErrorIs(t, err, context.Canceled)
}
