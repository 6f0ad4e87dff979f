package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/navigate"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// walkStep is one line of walk output.
type walkStep struct {
	navigate.Frame
	Nearest  *string  `json:"nearest,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// walkCommand moves a viewpoint through the tiling along a script.
func (c *CLI) walkCommand() *cobra.Command {
	var (
		tf      tilingFlags
		script  string
		nearest bool
		height  float64
		clamp   float64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "walk [script-file]",
		Short: "Move a viewpoint through the tiling along a script",
		Long: `Walk applies movement commands to a viewpoint starting at the origin tile and
prints the viewer's offset and heading after each one. Commands are
"forward", "back", "left", "right" (distances), "turn" (degrees, positive to
the right) and "climb" (height), one per line or separated by ';'.`,
		Example: `  hypertile walk -e "forward 0.5; turn 90; forward 0.5"
  hypertile walk route.txt --nearest -d 3
  echo "w 2" | hypertile walk - --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := readScript(cmd.InOrStdin(), script, args)
			if err != nil {
				return err
			}

			opts, err := c.options(cmd, &tf, nil)
			if err != nil {
				return err
			}
			opts.SetTilingDefaults()
			p, err := opts.Profile()
			if err != nil {
				return err
			}

			var tiles []tiling.Tile
			if nearest {
				runner, err := c.newRunner(cmd.Context())
				if err != nil {
					return err
				}
				defer runner.Close()

				res, _, _, err := runner.EnumerateWithCacheInfo(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if tiles, err = runner.Place(cmd.Context(), p, res); err != nil {
					return err
				}
			}

			v := navigate.New(p, navigate.WithHeight(height), navigate.WithClampDistance(clamp))
			steps := make([]walkStep, len(cmds))
			for i, command := range cmds {
				steps[i] = walkStep{Frame: v.Apply(command)}
				if tile, dist, ok := v.Nearest(tiles); ok {
					steps[i].Nearest, steps[i].Distance = &tile.Word, &dist
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				for _, s := range steps {
					if err := enc.Encode(s); err != nil {
						return err
					}
				}
				return nil
			}
			fmt.Fprintln(out, walkTable(steps))
			g := v.Globals()
			printKeyValue(out, "offset", fmt.Sprintf("%+.6f %+.6f %+.6f", g.Offset[0], g.Offset[1], g.Offset[2]))
			if v.LostInFog() {
				printWarning("the viewer walked into the fog at the edge of the disk")
			}
			return nil
		},
	}

	tf.register(cmd.Flags())
	cmd.Flags().StringVarP(&script, "exec", "e", "", "script text instead of a file")
	cmd.Flags().BoolVar(&nearest, "nearest", false, "enumerate tiles and report the nearest after each step")
	cmd.Flags().Float64Var(&height, "height", navigate.DefaultHeight, "eye height above the tiling")
	cmd.Flags().Float64Var(&clamp, "clamp", navigate.DefaultClampDistance, "largest hyperbolic offset before the fog (0 disables)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON lines")
	return cmd
}

// readScript parses the -e text, the named file, or stdin for "-".
func readScript(stdin io.Reader, text string, args []string) ([]navigate.Command, error) {
	var r io.Reader
	switch {
	case text != "":
		r = strings.NewReader(text)
	case len(args) == 1 && args[0] == "-":
		r = stdin
	case len(args) == 1:
		f, err := os.Open(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", args[0])
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open script %s", args[0])
		}
		defer f.Close()
		r = f
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "give a script file, '-' for stdin, or --exec")
	}
	return navigate.ParseScript(r)
}

func walkTable(steps []walkStep) string {
	rows := make([][]string, len(steps))
	for i, s := range steps {
		near := ""
		if s.Nearest != nil {
			near = reduce.Display(*s.Nearest)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%s %g", s.Command.Action, s.Command.Amount),
			fmt.Sprintf("%+.6f", s.Position[0]),
			fmt.Sprintf("%+.6f", s.Position[2]),
			fmt.Sprintf("%.1f°", s.Heading),
			near,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Command", "x", "z", "Heading", "Nearest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if steps[row].LostInFog {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
