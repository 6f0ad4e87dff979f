package tiling

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hypertile/pkg/reduce"
)

// DefaultDepth is the number of rings grown around the origin when no depth
// is given.
const DefaultDepth = 4

// DefaultMoves are the extensions tried from every tile: step up, or turn
// right, left or around and step.
var DefaultMoves = []string{"u", "ru", "lu", "rru"}

// Sentinel errors for enumeration.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("tiling: invalid option supplied")

	// ErrTooManyTiles is returned when enumeration exceeds the tile limit.
	ErrTooManyTiles = errors.New("tiling: tile limit exceeded")
)

// SeenStrategy selects how duplicate words are detected.
type SeenStrategy string

const (
	// SeenLinear scans the list of known words. Cheap for small tilings.
	SeenLinear SeenStrategy = "linear"
	// SeenSet keeps known words in a hash set.
	SeenSet SeenStrategy = "set"
)

// Option configures enumeration via functional arguments.
// An invalid Option is recorded and surfaced as ErrOptionViolation when
// Enumerate runs.
type Option func(*Options)

// Options holds the parameters of one enumeration.
type Options struct {
	// Depth is the largest number of 'u' moves a word is expanded from.
	// Zero yields only the origin.
	Depth int

	// Moves are appended to every expanded word, in this order.
	Moves []string

	// Exclude lists canonical words that are enumerated but not placed.
	Exclude []string

	// Special tiles are placed regardless of depth. A generated tile with
	// the same canonical word is replaced by the special one.
	Special []SpecialTile

	// Seen is the duplicate detection strategy. Both give identical results.
	Seen SeenStrategy

	// MaxTiles, if > 0, aborts enumeration with ErrTooManyTiles once more
	// words than this have been discovered.
	MaxTiles int

	// OnVisit is called for every word in discovery order.
	OnVisit func(word string, index int)

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger

	err error
}

// DefaultOptions returns Options with sane defaults:
//   - depth DefaultDepth
//   - DefaultMoves
//   - set based duplicate detection
//   - no exclusions, no special tiles, no tile limit
func DefaultOptions() Options {
	return Options{
		Depth:   DefaultDepth,
		Moves:   DefaultMoves,
		Seen:    SeenSet,
		OnVisit: func(string, int) {},
		Logger:  log.New(io.Discard),
	}
}

// WithDepth sets the number of rings to grow. Negative depths are invalid.
func WithDepth(d int) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: depth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		o.Depth = d
	}
}

// WithMoves replaces the candidate extensions. Every move must be a
// non-empty word over the move alphabet.
func WithMoves(moves ...string) Option {
	return func(o *Options) {
		if len(moves) == 0 {
			o.err = fmt.Errorf("%w: at least one move is required", ErrOptionViolation)
			return
		}
		for _, m := range moves {
			if m == "" {
				o.err = fmt.Errorf("%w: empty move", ErrOptionViolation)
				return
			}
			if err := reduce.Validate(m); err != nil {
				o.err = fmt.Errorf("%w: %v", ErrOptionViolation, err)
				return
			}
		}
		o.Moves = append([]string(nil), moves...)
	}
}

// WithExclusions skips placement of the given canonical words.
func WithExclusions(words ...string) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, words...)
	}
}

// WithSpecialTiles adds tiles placed before the generated grid.
func WithSpecialTiles(tiles ...SpecialTile) Option {
	return func(o *Options) {
		o.Special = append(o.Special, tiles...)
	}
}

// WithSeen selects the duplicate detection strategy.
func WithSeen(s SeenStrategy) Option {
	return func(o *Options) {
		switch s {
		case SeenLinear, SeenSet:
			o.Seen = s
		default:
			o.err = fmt.Errorf("%w: unknown seen strategy %q", ErrOptionViolation, s)
		}
	}
}

// WithMaxTiles caps the number of discovered words. Zero disables the cap.
func WithMaxTiles(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: max tiles cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxTiles = n
	}
}

// WithOnVisit registers a callback run for every discovered word.
func WithOnVisit(fn func(word string, index int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
