package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// tilingFlags are the enumeration flags shared by tiles, render, walk and
// browse. A flag only overrides the project file when it was given.
type tilingFlags struct {
	tilesPerVertex int
	depth          int
	moves          []string
	exclude        []string
	special        []string // "word=kind"
	maxTiles       int
	rules          string
	refresh        bool
}

func (f *tilingFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.tilesPerVertex, "tiles", "n", pipeline.DefaultTilesPerVertex, "tiles meeting at each vertex (3 sphere, 4 plane, 5+ hyperbolic)")
	fs.IntVarP(&f.depth, "depth", "d", pipeline.DefaultDepth, "rings grown around the origin")
	fs.StringSliceVar(&f.moves, "moves", nil, "move words tried from every tile (default u,ru,lu,rru)")
	fs.StringSliceVarP(&f.exclude, "exclude", "x", nil, "words to leave out of the picture")
	fs.StringArrayVar(&f.special, "special", nil, "special tile as word=kind (repeatable)")
	fs.IntVar(&f.maxTiles, "max-tiles", pipeline.DefaultMaxTiles, "abort after discovering this many words")
	fs.StringVar(&f.rules, "rules", "", "rule set file (default: built-in order-5 rules)")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even if the tiling is cached")
}

// renderFlags are the picture flags of the render command.
type renderFlags struct {
	output     string
	viz        string
	formats    string
	projection string
	size       float64
	scale      float64
	labels     bool
	colors     map[string]string
	detailed   bool
	treeOnly   bool
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&f.viz, "type", "t", pipeline.VizDisk, "visualization: disk, nodelink")
	fs.StringVarP(&f.formats, "format", "f", string(render.FormatSVG), "output format(s): svg, pdf, png, json, dot (comma-separated)")
	fs.StringVarP(&f.projection, "projection", "p", string(pipeline.DefaultProjection), "disk model: poincare, klein")
	fs.Float64Var(&f.size, "size", pipeline.DefaultSize, "picture side length in pixels")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	fs.BoolVar(&f.labels, "labels", false, "label tiles with their words")
	fs.StringToStringVar(&f.colors, "color", nil, "fill color per tile kind, e.g. goal=#e07a5f")
	fs.BoolVar(&f.detailed, "detailed", false, "label nodelink edges with their moves")
	fs.BoolVar(&f.treeOnly, "tree", false, "nodelink: draw first-discovery edges only")
}

// options merges the project file with the flags that were set on cmd.
func (c *CLI) options(cmd *cobra.Command, tf *tilingFlags, rf *renderFlags) (pipeline.Options, error) {
	opts, err := c.config().Options()
	if err != nil {
		return opts, err
	}
	fs := cmd.Flags()

	if tf != nil {
		if fs.Changed("tiles") {
			opts.TilesPerVertex = tf.tilesPerVertex
		}
		if fs.Changed("depth") {
			opts.Depth = pipeline.Depth(tf.depth)
		}
		if fs.Changed("moves") {
			opts.Moves = tf.moves
		}
		if fs.Changed("exclude") {
			opts.Exclude = tf.exclude
		}
		if fs.Changed("special") {
			if opts.Special, err = parseSpecials(tf.special); err != nil {
				return opts, err
			}
		}
		if fs.Changed("max-tiles") {
			opts.MaxTiles = tf.maxTiles
		}
		if fs.Changed("rules") {
			rs, err := reduce.LoadRuleSet(tf.rules)
			if err != nil {
				return opts, err
			}
			opts.Rules = &rs
		}
		opts.Refresh = tf.refresh
	}

	if rf != nil {
		if fs.Changed("type") {
			opts.VizType = rf.viz
		}
		if fs.Changed("format") || len(opts.Formats) == 0 {
			if opts.Formats, err = render.ParseFormats(rf.formats); err != nil {
				return opts, err
			}
		}
		if fs.Changed("projection") {
			opts.Projection = geom.Projection(strings.ToLower(rf.projection))
		}
		if fs.Changed("size") {
			opts.Size = rf.size
		}
		if fs.Changed("scale") {
			opts.Scale = rf.scale
		}
		if fs.Changed("labels") {
			opts.Labels = rf.labels
		}
		if fs.Changed("color") {
			opts.KindColors = rf.colors
		}
		if fs.Changed("detailed") {
			opts.Detailed = rf.detailed
		}
		if fs.Changed("tree") {
			opts.TreeOnly = rf.treeOnly
		}
	}

	opts.Logger = c.Logger
	return opts, nil
}

// parseSpecials parses "word=kind" pairs. A pair without '=' gets the kind
// "special".
func parseSpecials(pairs []string) ([]tiling.SpecialTile, error) {
	out := make([]tiling.SpecialTile, 0, len(pairs))
	for _, p := range pairs {
		word, kind, ok := strings.Cut(p, "=")
		if !ok {
			kind = "special"
		}
		if err := reduce.Validate(word); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWord, err, "special tile %q", p)
		}
		if kind == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "special tile %q has an empty kind", p)
		}
		out = append(out, tiling.SpecialTile{Word: word, Kind: kind})
	}
	return out, nil
}

// tilingSummary describes options in one line for status output.
func tilingSummary(opts pipeline.Options) string {
	n, d := opts.TilesPerVertex, pipeline.DefaultDepth
	if n == 0 {
		n = pipeline.DefaultTilesPerVertex
	}
	if opts.Depth != nil {
		d = *opts.Depth
	}
	return fmt.Sprintf("{4,%d} to depth %d", n, d)
}
