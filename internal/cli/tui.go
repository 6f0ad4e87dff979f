package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/navigate"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browseCommand opens a scrollable list of placed tiles.
func (c *CLI) browseCommand() *cobra.Command {
	var tf tilingFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse placed tiles interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &tf, nil)
			if err != nil {
				return err
			}
			opts.SetTilingDefaults()
			p, err := opts.Profile()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			res, _, _, err := runner.EnumerateWithCacheInfo(cmd.Context(), opts)
			if err != nil {
				return err
			}
			tiles, err := runner.Place(cmd.Context(), p, res)
			if err != nil {
				return err
			}

			prog := tea.NewProgram(NewTileListModel(p, res, tiles),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = prog.Run()
			return err
		},
	}

	tf.register(cmd.Flags())
	return cmd
}

// =============================================================================
// TileListModel - Interactive tile browser
// =============================================================================

// TileListModel is the bubbletea model of the browse command.
type TileListModel struct {
	Profile geom.Profile
	Result  *tiling.Result
	Tiles   []tiling.Tile
	Cursor  int
	Height  int
	Offset  int
}

// NewTileListModel creates a tile list model.
func NewTileListModel(p geom.Profile, res *tiling.Result, tiles []tiling.Tile) TileListModel {
	return TileListModel{Profile: p, Result: res, Tiles: tiles, Height: 15}
}

func (m TileListModel) Init() tea.Cmd {
	return nil
}

func (m TileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Tiles))
		case "end", "G":
			m.move(len(m.Tiles))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and scrolls it into view.
func (m *TileListModel) move(delta int) {
	if len(m.Tiles) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Tiles)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Profile.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.Tiles) == 0 {
		b.WriteString(listDimStyle.Render("  no tiles"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Tiles))
	for i := m.Offset; i < end; i++ {
		t := m.Tiles[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-20s %-10s ring %d", cursor, reduce.Display(t.Word), t.Kind, t.Ring)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(m.detail(m.Tiles[m.Cursor])))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tiles))))
	return b.String()
}

// detail describes the selected tile.
func (m TileListModel) detail(t tiling.Tile) string {
	lines := []string{
		StyleHighlight.Render(reduce.Display(t.Word)),
		"gyrovector " + t.Gyro.String(),
		fmt.Sprintf("distance   %.9f", navigate.Distance(m.Profile, geom.Identity.Position, t.Gyro.Position)),
	}
	if m.Result != nil {
		if path, err := m.Result.PathTo(t.Word); err == nil {
			shown := make([]string, len(path))
			for i, w := range path {
				shown[i] = reduce.Display(w)
			}
			lines = append(lines, "path       "+strings.Join(shown, " → "))
		}
	}
	return strings.Join(lines, "\n")
}
