package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render/sink"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Output styles of the tiles command.
const (
	tilesTable  = "table"
	tilesWords  = "words"
	tilesJSON   = "json"
	tilesNDJSON = "ndjson"
)

// tilesCommand enumerates and places tiles.
func (c *CLI) tilesCommand() *cobra.Command {
	var (
		tf         tilingFlags
		output     string
		projection string
		pathTo     string
	)

	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Enumerate and place the tiles around the origin",
		Example: `  hypertile tiles -d 2
  hypertile tiles -n 4 -d 3 -o words
  hypertile tiles -o ndjson --projection klein > tiles.ndjson
  hypertile tiles --path uluu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &tf, nil)
			if err != nil {
				return err
			}
			if projection != "" {
				opts.Projection = geom.Projection(strings.ToLower(projection))
			}
			opts.SetTilingDefaults()

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			res, _, hit, err := runner.EnumerateWithCacheInfo(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done("Enumerated tiles", "words", len(res.Words), "cached", hit)

			if pathTo != "" {
				return printPath(cmd.OutOrStdout(), opts, res, pathTo)
			}

			p, err := opts.Profile()
			if err != nil {
				return err
			}
			if opts.Projection != "" {
				if err := pipeline.ValidateProjection(opts.Projection, p); err != nil {
					return err
				}
			}
			return writeTiles(cmd, runner, p, res, output, opts.Projection, hit)
		},
	}

	tf.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", tilesTable, "output: table, words, json, ndjson")
	cmd.Flags().StringVarP(&projection, "projection", "p", "", "add projected centers: poincare, klein")
	cmd.Flags().StringVar(&pathTo, "path", "", "print the discovery path to this word instead")
	return cmd
}

func writeTiles(cmd *cobra.Command, runner *pipeline.Runner, p geom.Profile, res *tiling.Result, output string, proj geom.Projection, cached bool) error {
	ctx, out := cmd.Context(), cmd.OutOrStdout()

	if output == tilesNDJSON {
		s := sink.NewNDJSON(out, p, proj)
		if _, err := tiling.Place(ctx, p, res, s); err != nil {
			return err
		}
		printStats(len(res.Words), s.Count(), 0, cached)
		return nil
	}

	tiles, err := runner.Place(ctx, p, res)
	if err != nil {
		return err
	}

	switch output {
	case tilesTable:
		fmt.Fprintln(out, StyleTitle.Render(p.String()))
		fmt.Fprintln(out, tileTable(tiles))
	case tilesWords:
		for _, t := range tiles {
			fmt.Fprintln(out, reduce.Display(t.Word))
		}
	case tilesJSON:
		data, err := sink.RenderJSON(p, tiles,
			sink.WithJSONProjection(proj),
			sink.WithJSONDepth(res.Depth),
			sink.WithJSONEdges(res.Edges))
		if err != nil {
			return err
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown output %q (want table, words, json or ndjson)", output)
	}
	printStats(len(res.Words), len(tiles), len(res.Edges), cached)
	return nil
}

// printPath prints the words leading from the origin to word.
func printPath(out io.Writer, opts pipeline.Options, res *tiling.Result, word string) error {
	r, err := reduce.New(opts.RuleSet())
	if err != nil {
		return err
	}
	if err := reduce.Validate(word); err != nil {
		return err
	}
	canonical, err := r.Reduce(word)
	if err != nil {
		return err
	}
	path, err := res.PathTo(canonical)
	if err != nil {
		return err
	}
	for i, w := range path {
		fmt.Fprintf(out, "%d %s\n", i, reduce.Display(w))
	}
	return nil
}
