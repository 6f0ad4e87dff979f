package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/observability"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner doesn't store pipeline results. Multiple goroutines can safely
// use the same Runner with different options; concurrent runs with equal
// tiling options share one enumeration.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	group singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete enumerate → place → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[render.Format][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	p, err := opts.Profile()
	if err != nil {
		return nil, err
	}
	result.Profile = p
	if rs := opts.RuleSet(); rs.TilesPerVertex != 0 && rs.TilesPerVertex != p.TilesPerVertex {
		logger.Warn("rule set describes a different tiling",
			"rules", rs.Name,
			"rules_tiles_per_vertex", rs.TilesPerVertex,
			"tiles_per_vertex", p.TilesPerVertex)
	}

	// Stage 1: Enumerate
	enumStart := time.Now()
	res, tilingKey, hit, err := r.EnumerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tiling = res
	result.Stats.EnumerateTime = time.Since(enumStart)
	result.Stats.WordCount = len(res.Words)
	result.Stats.EdgeCount = len(res.Edges)
	result.CacheInfo.TilingHit = hit

	logger.Info("enumerated tiles",
		"tiles_per_vertex", p.TilesPerVertex,
		"depth", res.Depth,
		"words", len(res.Words),
		"cached", hit,
		"duration", result.Stats.EnumerateTime)

	// Stage 2: Place
	placeStart := time.Now()
	tiles, err := r.Place(ctx, p, res)
	if err != nil {
		return nil, err
	}
	result.Tiles = tiles
	result.Stats.PlaceTime = time.Since(placeStart)
	result.Stats.TileCount = len(tiles)

	logger.Debug("placed tiles",
		"tiles", len(tiles),
		"duration", result.Stats.PlaceTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, res, tiles, cache.KeyHash(tilingKey), opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"viz", opts.VizType,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// EnumerateWithCacheInfo enumerates tiles with caching. It returns the
// result, the tiling cache key and whether the result came from cache.
func (r *Runner) EnumerateWithCacheInfo(ctx context.Context, opts Options) (*tiling.Result, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForEnumerate(); err != nil {
		return nil, "", false, err
	}
	cacheKey := r.Keyer.TilingKey(opts.TilingKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var res tiling.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, cacheKey, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached tiling", "key", cacheKey)
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
	}

	v, err, _ := r.group.Do(cacheKey, func() (any, error) {
		res, err := Enumerate(ctx, opts)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TilingTTL); err != nil {
				opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, "", false, err
	}
	return v.(*tiling.Result), cacheKey, false, nil
}

// Enumerate builds the reducer from opts and runs the tile enumerator.
func Enumerate(ctx context.Context, opts Options) (*tiling.Result, error) {
	if err := opts.ValidateForEnumerate(); err != nil {
		return nil, err
	}
	reducer, err := reduce.New(opts.RuleSet())
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnEnumerateStart(ctx, opts.TilesPerVertex, *opts.Depth)
	start := time.Now()

	res, err := tiling.Enumerate(ctx, reducer, opts.TilingOptions()...)

	words := 0
	if res != nil {
		words = len(res.Words)
	}
	hooks.OnEnumerateComplete(ctx, opts.TilesPerVertex, words, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("enumerate: %w", err)
	}
	return res, nil
}

// Place converts every placed word of res into a tile.
func (r *Runner) Place(ctx context.Context, p geom.Profile, res *tiling.Result) ([]tiling.Tile, error) {
	hooks := observability.Pipeline()
	n := len(res.Special) + len(res.Placed)
	hooks.OnPlaceStart(ctx, n)
	start := time.Now()

	tiles, err := tiling.Tiles(ctx, p, res)

	hooks.OnPlaceComplete(ctx, len(tiles), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	return tiles, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// tilingHash is the hash part of the tiling cache key the tiles came from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p geom.Profile, res *tiling.Result, tiles []tiling.Tile, tilingHash string, opts Options) (map[render.Format][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[render.Format][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(tilingHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, p, res, tiles, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(tilingHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// wrapRender tags renderer failures that carry no code of their own.
func wrapRender(format render.Format, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
}
