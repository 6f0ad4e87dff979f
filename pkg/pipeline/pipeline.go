// Package pipeline provides the configure → enumerate → place → render
// pipeline behind every hypertile entry point.
//
// The CLI and the HTTP server both build an [Options] value and hand it to a
// [Runner], so defaults, validation and caching behave the same everywhere.
//
// # Stages
//
//  1. Configure: derive the curvature profile and build the reducer
//  2. Enumerate: breadth-first walk over move words, reduced to canonical form
//  3. Place: convert every canonical word into a gyrovector
//  4. Render: produce SVG, PDF, PNG, JSON or DOT output
//
// Enumeration results and rendered artifacts are cached. Placement is cheap
// and always recomputed.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    TilesPerVertex: 5,
//	    Depth:          pipeline.Depth(3),
//	    Formats:        []render.Format{render.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[render.FormatSVG]
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/render/disk"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTilesPerVertex is the order-5 square tiling of the hyperbolic
	// plane, the tiling the built-in rule set describes.
	DefaultTilesPerVertex = 5

	// DefaultDepth is the number of rings grown around the origin.
	DefaultDepth = tiling.DefaultDepth

	// DefaultMaxTiles bounds the words a single run may discover. Ring sizes
	// grow exponentially in the hyperbolic plane.
	DefaultMaxTiles = 50000

	// DefaultSize is the side length of disk pictures in pixels.
	DefaultSize = disk.DefaultSize

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultProjection is the disk model used for pictures.
	DefaultProjection = geom.Poincare
)

// Visualization types.
const (
	// VizDisk draws tiles in the Poincaré or Klein disk.
	VizDisk = "disk"

	// VizNodelink draws the adjacency graph of canonical words.
	VizNodelink = "nodelink"
)

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizDisk:     true,
	VizNodelink: true,
}

// Depth returns a pointer to d for Options.Depth, where nil means default.
func Depth(d int) *int { return &d }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Tiling options
	TilesPerVertex int                  `json:"tiles_per_vertex,omitempty"`
	Depth          *int                 `json:"depth,omitempty"` // nil: DefaultDepth; 0 yields only the origin
	Moves          []string             `json:"moves,omitempty"`
	Exclude        []string             `json:"exclude,omitempty"`
	Special        []tiling.SpecialTile `json:"special,omitempty"`
	MaxTiles       int                  `json:"max_tiles,omitempty"`
	Rules          *reduce.RuleSet      `json:"rules,omitempty"` // nil: reduce.DefaultRuleSet
	Refresh        bool                 `json:"refresh,omitempty"`

	// Render options
	VizType    string            `json:"viz_type,omitempty"`
	Formats    []render.Format   `json:"formats,omitempty"`
	Projection geom.Projection   `json:"projection,omitempty"`
	Size       float64           `json:"size,omitempty"`
	Scale      float64           `json:"scale,omitempty"`
	Labels     bool              `json:"labels,omitempty"`
	KindColors map[string]string `json:"kind_colors,omitempty"`
	Detailed   bool              `json:"detailed,omitempty"`  // nodelink: label edges with moves
	TreeOnly   bool              `json:"tree_only,omitempty"` // nodelink: first-discovery edges only

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Profile holds the curvature constants the tiles were placed with.
	Profile geom.Profile

	// Tiling is the enumeration result.
	Tiling *tiling.Result

	// Tiles are the placed tiles, special tiles first.
	Tiles []tiling.Tile

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	WordCount     int
	TileCount     int
	EdgeCount     int
	EnumerateTime time.Duration
	PlaceTime     time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TilingHit bool // Whether the enumeration came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: disk, nodelink)", vizType)
	}
	return nil
}

// ValidateProjection checks that a projection is valid for profile p.
// The Klein view of a sphere only covers one hemisphere.
func ValidateProjection(proj geom.Projection, p geom.Profile) error {
	if !geom.ValidProjections[proj] {
		return errors.New(errors.ErrCodeInvalidProjection, "invalid projection: %q (must be one of: poincare, klein)", proj)
	}
	if proj == geom.Klein && p.IsSpherical() {
		return errors.New(errors.ErrCodeInvalidProjection, "the klein projection cannot show a spherical tiling")
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []render.Format) error {
	for _, f := range formats {
		if !slices.Contains(render.Formats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", f)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForEnumerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetTilingDefaults sets default values for enumeration.
func (o *Options) SetTilingDefaults() {
	if o.TilesPerVertex == 0 {
		o.TilesPerVertex = DefaultTilesPerVertex
	}
	if o.Depth == nil {
		o.Depth = Depth(DefaultDepth)
	}
	if o.MaxTiles == 0 {
		o.MaxTiles = DefaultMaxTiles
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForEnumerate validates and sets defaults for enumeration.
func (o *Options) ValidateForEnumerate() error {
	o.SetTilingDefaults()
	if _, err := o.Profile(); err != nil {
		return err
	}
	if *o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "depth cannot be negative (%d)", *o.Depth)
	}
	if o.MaxTiles < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_tiles cannot be negative (%d)", o.MaxTiles)
	}
	for _, w := range o.Exclude {
		if err := reduce.Validate(w); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidWord, err, "exclude")
		}
	}
	if o.Rules != nil {
		if err := o.Rules.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = VizDisk
	}
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	if o.Projection == "" {
		o.Projection = DefaultProjection
	}
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetTilingDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	p, err := o.Profile()
	if err != nil {
		return err
	}
	if err := ValidateProjection(o.Projection, p); err != nil {
		return err
	}
	if o.Size < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size and scale must be positive")
	}
	return nil
}

// Profile returns the curvature profile for TilesPerVertex.
func (o *Options) Profile() (geom.Profile, error) {
	p, err := geom.NewProfile(o.TilesPerVertex)
	if err != nil {
		return geom.Profile{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "tiles_per_vertex")
	}
	return p, nil
}

// RuleSet returns the configured rule set or the built-in one.
func (o *Options) RuleSet() reduce.RuleSet {
	if o.Rules != nil {
		return *o.Rules
	}
	return reduce.DefaultRuleSet()
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizNodelink
}

// TilingOptions returns the enumerator options.
func (o *Options) TilingOptions() []tiling.Option {
	opts := []tiling.Option{
		tiling.WithDepth(*o.Depth),
		tiling.WithExclusions(o.Exclude...),
		tiling.WithSpecialTiles(o.Special...),
		tiling.WithMaxTiles(o.MaxTiles),
		tiling.WithLogger(o.Logger),
	}
	if len(o.Moves) > 0 {
		opts = append(opts, tiling.WithMoves(o.Moves...))
	}
	return opts
}

// TilingKeyOpts returns cache key options for enumeration.
func (o *Options) TilingKeyOpts() cache.TilingKeyOpts {
	rs, _ := json.Marshal(o.RuleSet())
	special := make([]string, len(o.Special))
	for i, st := range o.Special {
		special[i] = st.Word + "=" + st.Kind
	}
	exclude := slices.Clone(o.Exclude)
	sort.Strings(exclude)
	return cache.TilingKeyOpts{
		TilesPerVertex: o.TilesPerVertex,
		Depth:          *o.Depth,
		RuleSetHash:    cache.Hash(rs),
		Moves:          o.Moves,
		Exclude:        exclude,
		Special:        special,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     o.VizType + "/" + string(format),
		Projection: string(o.Projection),
		Size:       o.Size,
		Labels:     o.Labels,
		Colors:     o.KindColors,
	}
	if format == render.FormatPNG {
		k.Scale = o.Scale
	}
	if o.IsNodelink() || format == render.FormatDOT {
		k.Detailed = o.Detailed
		k.TreeOnly = o.TreeOnly
	}
	return k
}
