package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/pipeline"
)

// profileCommand prints the curvature constants of a tiling.
func (c *CLI) profileCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [tiles-per-vertex]",
		Short: "Show the curvature constants of a tiling",
		Example: `  hypertile profile        # order-5 hyperbolic tiling
  hypertile profile 4      # flat square grid
  hypertile profile 3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := c.config().TilesPerVertex
			if n == 0 {
				n = pipeline.DefaultTilesPerVertex
			}
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.New(errors.ErrCodeInvalidInput, "tiles per vertex must be an integer, got %q", args[0])
				}
				n = v
			}

			p, err := geom.NewProfile(n)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "profile")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					geom.Profile
					Name      string  `json:"name"`
					RootScale float64 `json:"root_scale"`
				}{p, p.Name(), p.RootScale()})
			}

			fmt.Fprintln(out, StyleTitle.Render(p.String()))
			printKeyValue(out, "curvature", strconv.FormatFloat(p.Curvature, 'f', 0, 64))
			printKeyValue(out, "cell width", formatFloat(p.CellWidth))
			printKeyValue(out, "poincaré cell diagonal", formatFloat(p.PoincareCellDiagonal))
			printKeyValue(out, "klein value", formatFloat(p.KleinValue))
			printKeyValue(out, "root scale", formatFloat(p.RootScale()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 9, 64)
}
