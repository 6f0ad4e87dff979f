package tiling

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
)

// KindDefault is the kind of every generated tile.
const KindDefault = "default"

// Tile is one placement request: a canonical word and the motion carrying
// the origin tile onto it.
type Tile struct {
	Word  string          `json:"word" bson:"word"`
	Kind  string          `json:"kind" bson:"kind"`
	Ring  int             `json:"ring" bson:"ring"`
	Index int             `json:"index" bson:"index"`
	Gyro  geom.GyroVector `json:"gyro" bson:"gyro"`
}

// Sink consumes placement requests. Place calls a Sink from one goroutine,
// in placement order.
type Sink interface {
	Place(ctx context.Context, t Tile) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, t Tile) error

// Place calls f(ctx, t).
func (f SinkFunc) Place(ctx context.Context, t Tile) error { return f(ctx, t) }

// Collector is a Sink that keeps every tile in memory.
type Collector struct {
	mu    sync.Mutex
	Tiles []Tile
}

// Place appends t.
func (c *Collector) Place(_ context.Context, t Tile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Tiles = append(c.Tiles, t)
	return nil
}

// Multi fans every tile out to each sink in turn.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, t Tile) error {
		for _, s := range sinks {
			if err := s.Place(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// Tiles converts a result into placement requests: special tiles first,
// then placed words in discovery order. Gyrovectors are computed in
// parallel.
func Tiles(ctx context.Context, p geom.Profile, res *Result) ([]Tile, error) {
	tiles := make([]Tile, 0, len(res.Special)+len(res.Placed))
	for _, st := range res.Special {
		tiles = append(tiles, Tile{Word: st.Word, Kind: st.Kind})
	}
	for _, w := range res.Placed {
		tiles = append(tiles, Tile{Word: w, Kind: KindDefault})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range tiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tiles[i].Index = i
			tiles[i].Ring = reduce.Depth(tiles[i].Word)
			tiles[i].Gyro = p.TileCoordToGyroVector(tiles[i].Word)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

// Place sends every tile of res to sink and returns the number placed.
func Place(ctx context.Context, p geom.Profile, res *Result, sink Sink) (int, error) {
	tiles, err := Tiles(ctx, p, res)
	if err != nil {
		return 0, err
	}
	for i, t := range tiles {
		if err := sink.Place(ctx, t); err != nil {
			return i, err
		}
	}
	return len(tiles), nil
}
