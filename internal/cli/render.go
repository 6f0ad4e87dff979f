package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/render"
)

// renderCommand draws a tiling and writes one file per format.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		tf tilingFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a tiling to SVG, PDF, PNG, JSON or DOT",
		Example: `  hypertile render -d 3 -o order5.svg
  hypertile render -n 6 -d 2 -f svg,png --labels
  hypertile render -t nodelink -d 2 -f dot,svg --detailed
  hypertile render --special uu=goal --color goal=#e07a5f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &tf, &rf)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinner(cmd.Context(), "Rendering "+tilingSummary(opts)+"...")
			spinner.Start()
			result, err := runner.Execute(cmd.Context(), opts)
			spinner.Stop()
			if err != nil {
				return err
			}

			paths, err := writeArtifacts(result, rf.output, defaultBase(result, opts.IsNodelink()))
			if err != nil {
				return err
			}

			printSuccess("Rendered %s", result.Profile)
			printStats(result.Stats.WordCount, result.Stats.TileCount, result.Stats.EdgeCount, result.CacheInfo.TilingHit)
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	tf.register(cmd.Flags())
	rf.register(cmd.Flags())
	return cmd
}

// defaultBase names outputs after the tiling, e.g. "tiling_4x5_d3".
func defaultBase(result *pipeline.Result, nodelink bool) string {
	name := fmt.Sprintf("tiling_4x%d_d%d", result.Profile.TilesPerVertex, result.Tiling.Depth)
	if nodelink {
		name += "_nodelink"
	}
	return name
}

// writeArtifacts writes every artifact of result in format order. A single
// artifact goes to output as given; several share output as base path.
func writeArtifacts(result *pipeline.Result, output, base string) ([]string, error) {
	formats := make([]render.Format, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	slices.SortFunc(formats, func(a, b render.Format) int {
		return slices.Index(render.Formats, a) - slices.Index(render.Formats, b)
	})

	var paths []string
	for _, f := range formats {
		path := outputPath(output, base, f, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath derives the file for format f. A known format extension on
// output is replaced when several formats are written.
func outputPath(output, base string, f render.Format, single bool) string {
	if output == "" {
		return base + "." + string(f)
	}
	if single {
		return output
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + string(f)
}
