package navigate

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// Action is one scripted viewer action.
type Action string

// Supported actions.
const (
	Forward Action = "forward"
	Back    Action = "back"
	Left    Action = "left"
	Right   Action = "right"
	Turn    Action = "turn"
	Climb   Action = "climb"
)

// aliases maps short and WASD spellings to actions.
var aliases = map[string]Action{
	"forward": Forward, "f": Forward, "w": Forward,
	"back": Back, "b": Back, "s": Back,
	"left": Left, "a": Left,
	"right": Right, "d": Right,
	"turn": Turn, "t": Turn,
	"climb": Climb, "c": Climb,
}

// directions are the viewer-frame directions of the movement actions.
var directions = map[Action]mgl64.Vec3{
	Forward: {0, 0, 1},
	Back:    {0, 0, -1},
	Left:    {-1, 0, 0},
	Right:   {1, 0, 0},
}

// Command is an action with its amount: a distance for moves, degrees for
// turns, a height change for climbs.
type Command struct {
	Action Action  `json:"action"`
	Amount float64 `json:"amount"`
}

// Frame is the viewer state after a command.
type Frame struct {
	Command   Command    `json:"command"`
	Position  mgl64.Vec3 `json:"position"`
	Heading   float64    `json:"heading"`
	Height    float64    `json:"height"`
	LostInFog bool       `json:"lost_in_fog"`
}

// ParseScript reads one command per line or per ';'-separated clause, e.g.
// "forward 0.5; turn 90; w 0.25". Blank lines and text after '#' are ignored.
func ParseScript(r io.Reader) ([]Command, error) {
	var cmds []Command
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, clause := range strings.Split(text, ";") {
			fields := strings.Fields(clause)
			if len(fields) == 0 {
				continue
			}
			cmd, err := parseCommand(fields)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
			}
			cmds = append(cmds, cmd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read script")
	}
	return cmds, nil
}

func parseCommand(fields []string) (Command, error) {
	action, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, errors.New(errors.ErrCodeInvalidInput, "unknown action %q", fields[0])
	}
	if len(fields) != 2 {
		return Command{}, errors.New(errors.ErrCodeInvalidInput, "%s takes exactly one amount", action)
	}
	amount, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Command{}, errors.New(errors.ErrCodeInvalidInput, "%s: invalid amount %q", action, fields[1])
	}
	return Command{Action: action, Amount: amount}, nil
}

// ValidateCommand checks a command built in code or decoded from JSON.
func ValidateCommand(cmd Command) error {
	switch cmd.Action {
	case Forward, Back, Left, Right, Turn, Climb:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown action %q", cmd.Action)
	}
	if math.IsNaN(cmd.Amount) || math.IsInf(cmd.Amount, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "%s: amount must be finite", cmd.Action)
	}
	return nil
}

// Apply runs one command.
func (v *Viewpoint) Apply(cmd Command) Frame {
	switch cmd.Action {
	case Turn:
		v.Turn(cmd.Amount * math.Pi / 180)
		v.lost = false
	case Climb:
		v.Climb(cmd.Amount)
		v.lost = false
	default:
		v.Move(directions[cmd.Action], cmd.Amount)
	}
	return Frame{
		Command:   cmd,
		Position:  v.Position(),
		Heading:   v.HeadingDegrees(),
		Height:    v.height,
		LostInFog: v.lost,
	}
}

// Run applies every command in order and returns the frame after each.
func (v *Viewpoint) Run(cmds []Command) []Frame {
	frames := make([]Frame, len(cmds))
	for i, cmd := range cmds {
		frames[i] = v.Apply(cmd)
	}
	return frames
}
