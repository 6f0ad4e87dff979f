package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/observability"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/render/sink"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"disk", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestValidateProjection(t *testing.T) {
	tests := []struct {
		proj    geom.Projection
		n       int
		wantErr bool
	}{
		{geom.Poincare, 5, false},
		{geom.Klein, 5, false},
		{geom.Klein, 4, false},
		{geom.Poincare, 3, false},
		{geom.Klein, 3, true},
		{"gnomonic", 5, true},
	}

	for _, tt := range tests {
		err := ValidateProjection(tt.proj, geom.MustProfile(tt.n))
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateProjection(%q, %d) error = %v, wantErr %v", tt.proj, tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidProjection) {
			t.Errorf("ValidateProjection(%q, %d) code = %v", tt.proj, tt.n, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]render.Format{render.FormatSVG, render.FormatDOT}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]render.Format{"svg", "gif"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, DefaultTilesPerVertex, opts.TilesPerVertex)
	assert.Equal(t, DefaultDepth, *opts.Depth)
	assert.Equal(t, DefaultMaxTiles, opts.MaxTiles)
	assert.Equal(t, VizDisk, opts.VizType)
	assert.Equal(t, []render.Format{render.FormatSVG}, opts.Formats)
	assert.Equal(t, geom.Poincare, opts.Projection)
	assert.Equal(t, DefaultSize, opts.Size)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.NotNil(t, opts.Logger)

	// Idempotent.
	before := opts
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, before, opts)
}

func TestValidateAndSetDefaultsKeepsZeroDepth(t *testing.T) {
	opts := Options{Depth: Depth(0)}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, 0, *opts.Depth)
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"too few tiles", Options{TilesPerVertex: 2}, errors.ErrCodeInvalidConfig},
		{"negative depth", Options{Depth: Depth(-1)}, errors.ErrCodeInvalidConfig},
		{"negative max tiles", Options{MaxTiles: -1}, errors.ErrCodeInvalidConfig},
		{"bad exclusion", Options{Exclude: []string{"ux"}}, errors.ErrCodeInvalidWord},
		{"bad rules", Options{Rules: &reduce.RuleSet{Rules: []reduce.Rule{{Pattern: "", Replacement: "u"}}}}, errors.ErrCodeInvalidConfig},
		{"bad viz", Options{VizType: "tower"}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []render.Format{"gif"}}, errors.ErrCodeInvalidFormat},
		{"klein sphere", Options{TilesPerVertex: 3, Projection: geom.Klein}, errors.ErrCodeInvalidProjection},
		{"negative size", Options{Size: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestTilingKeyOpts(t *testing.T) {
	a := Options{Exclude: []string{"u", "ru"}}
	b := Options{Exclude: []string{"ru", "u"}}
	a.SetTilingDefaults()
	b.SetTilingDefaults()

	keyer := cache.NewDefaultKeyer()
	assert.Equal(t, keyer.TilingKey(a.TilingKeyOpts()), keyer.TilingKey(b.TilingKeyOpts()),
		"exclusion order should not change the key")

	c := Options{Special: []tiling.SpecialTile{{Word: "u", Kind: "goal"}}}
	c.SetTilingDefaults()
	assert.NotEqual(t, keyer.TilingKey(a.TilingKeyOpts()), keyer.TilingKey(c.TilingKeyOpts()))
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{}
	require.NoError(t, opts.ValidateAndSetDefaults())

	svg := opts.ArtifactKeyOpts(render.FormatSVG)
	assert.Equal(t, "disk/svg", svg.Format)
	assert.Zero(t, svg.Scale, "scale only matters for PNG")
	assert.Equal(t, DefaultScale, opts.ArtifactKeyOpts(render.FormatPNG).Scale)

	opts.Detailed = true
	assert.False(t, opts.ArtifactKeyOpts(render.FormatSVG).Detailed)
	assert.True(t, opts.ArtifactKeyOpts(render.FormatDOT).Detailed)
}

func TestEnumerate(t *testing.T) {
	res, err := Enumerate(context.Background(), Options{TilesPerVertex: 4, Depth: Depth(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "u", "ru", "lu", "rru"}, res.Words)
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		TilesPerVertex: 5,
		Depth:          Depth(2),
		Formats:        []render.Format{render.FormatSVG, render.FormatJSON, render.FormatDOT},
		Special:        []tiling.SpecialTile{{Word: "uu", Kind: "goal"}},
	})
	require.NoError(t, err)

	assert.Len(t, result.RunID, 36)
	assert.Equal(t, 5, result.Profile.TilesPerVertex)
	assert.Equal(t, 17, result.Stats.WordCount)
	assert.Equal(t, len(result.Tiles), result.Stats.TileCount)
	assert.Equal(t, "goal", result.Tiles[0].Kind)
	assert.False(t, result.CacheInfo.TilingHit)
	assert.False(t, result.CacheInfo.RenderHit)

	svg := string(result.Artifacts[render.FormatSVG])
	assert.True(t, strings.HasPrefix(svg, "<svg"), svg[:min(len(svg), 40)])
	assert.Equal(t, len(result.Tiles), strings.Count(svg, `class="tile"`))

	doc, err := sink.DecodeJSON(result.Artifacts[render.FormatJSON])
	require.NoError(t, err)
	assert.Len(t, doc.Tiles, len(result.Tiles))
	assert.Equal(t, 2, doc.Depth)

	assert.Contains(t, string(result.Artifacts[render.FormatDOT]), "digraph")
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	opts := Options{Depth: Depth(2), Formats: []render.Format{render.FormatJSON}}
	first, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.TilingHit)

	second, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.TilingHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Tiling.Words, second.Tiling.Words)
	assert.Equal(t, first.Tiling.Parent, second.Tiling.Parent)
	assert.Equal(t, first.Artifacts, second.Artifacts)
	assert.NotEqual(t, first.RunID, second.RunID)

	// A different render option reuses the enumeration only.
	opts.Projection = geom.Klein
	third, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, third.CacheInfo.TilingHit)
	assert.False(t, third.CacheInfo.RenderHit)

	opts.Refresh = true
	fourth, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, fourth.CacheInfo.TilingHit)
}

func TestExecuteIgnoresCorruptCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	opts := Options{Depth: Depth(1), Formats: []render.Format{render.FormatDOT}}
	require.NoError(t, opts.ValidateForEnumerate())
	key := runner.Keyer.TilingKey(opts.TilingKeyOpts())
	require.NoError(t, fc.Set(ctx, key, []byte("not json"), time.Hour))

	result, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, result.CacheInfo.TilingHit)
	assert.Len(t, result.Tiling.Words, 5)
}

func TestExecuteNodelink(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Depth:   Depth(1),
		VizType: VizNodelink,
		Formats: []render.Format{render.FormatSVG},
	})
	require.NoError(t, err)
	assert.Contains(t, string(result.Artifacts[render.FormatSVG]), "<svg")
}

func TestExecuteNonConvergentRules(t *testing.T) {
	rules := reduce.RuleSet{Rules: []reduce.Rule{{Pattern: "u", Replacement: "uu"}}}
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Depth: Depth(1), Rules: &rules})
	assert.True(t, errors.Is(err, errors.ErrCodeNonConvergent), "got %v", err)
	assert.ErrorIs(t, err, reduce.ErrNonConvergent)
}

func TestExecuteTooManyTiles(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Depth: Depth(3), MaxTiles: 10})
	assert.ErrorIs(t, err, tiling.ErrTooManyTiles)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(ctx, Options{Depth: Depth(2)})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnEnumerateStart(context.Context, int, int) { h.record("enumerate") }
func (h *recordingHooks) OnPlaceStart(context.Context, int)           { h.record("place") }
func (h *recordingHooks) OnRenderStart(context.Context, []string)     { h.record("render") }

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Depth: Depth(1), Formats: []render.Format{render.FormatJSON}})
	require.NoError(t, err)
	assert.Equal(t, []string{"enumerate", "place", "render"}, hooks.events)
}

func TestOptionsJSON(t *testing.T) {
	var opts Options
	require.NoError(t, json.Unmarshal([]byte(`{"tiles_per_vertex": 6, "depth": 0, "formats": ["svg", "json"], "projection": "klein"}`), &opts))
	require.NotNil(t, opts.Depth)
	assert.Equal(t, 0, *opts.Depth)
	assert.Equal(t, 6, opts.TilesPerVertex)
	assert.Equal(t, []render.Format{render.FormatSVG, render.FormatJSON}, opts.Formats)
	assert.Equal(t, geom.Klein, opts.Projection)
}
