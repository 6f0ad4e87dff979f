package tiling

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/reduce"
)

// Reducer canonicalizes candidate words. *reduce.Reducer satisfies it.
type Reducer interface {
	Reduce(word string) (string, error)
}

// SpecialTile is a tile placed at a fixed coordinate with its own kind,
// independent of the enumeration depth.
type SpecialTile struct {
	Word string `json:"word" toml:"word"`
	Kind string `json:"kind" toml:"kind"`
}

// Edge links a word to the canonical word reached by appending Move.
type Edge struct {
	From string `json:"from"`
	Move string `json:"move"`
	To   string `json:"to"`
}

// Result is the outcome of an enumeration.
type Result struct {
	// Words are all distinct canonical words in discovery order. Words[0]
	// is the origin.
	Words []string `json:"words"`

	// Placed are the words to place: Words without exclusions and without
	// words taken by special tiles.
	Placed []string `json:"placed"`

	// Special are the special tiles with canonical words.
	Special []SpecialTile `json:"special,omitempty"`

	// Edges are the distinct adjacencies found while expanding words.
	Edges []Edge `json:"edges"`

	// Parent maps every word but the origin to the word it was first
	// reached from.
	Parent map[string]string `json:"parent,omitempty"`

	// Depth is the ring bound the result was computed with.
	Depth int `json:"depth"`
}

// PathTo reconstructs the words from the origin to word along first
// discovery. It returns a NOT_FOUND error if word was not enumerated.
func (r *Result) PathTo(word string) ([]string, error) {
	if _, ok := r.Parent[word]; !ok && word != reduce.Origin {
		return nil, errors.New(errors.ErrCodeNotFound, "tile %q not enumerated", word)
	}
	path := []string{}
	for cur := word; ; {
		path = append(path, cur)
		prev, ok := r.Parent[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// walker holds the mutable state of one breadth-first enumeration.
type walker struct {
	ctx     context.Context
	reducer Reducer
	opts    Options
	queue   []string
	seen    Seen
	edges   map[[2]string]bool
	res     *Result
}

// Enumerate grows the tiling breadth first from the origin.
//
// Every dequeued word is recorded; words with fewer than Depth 'u' moves are
// extended by each move, reduced, and queued unless already known. A word is
// known from the moment it is queued, so the result holds no duplicates.
//
// Enumerate returns ErrOptionViolation for bad options, the reducer's error
// (reduce.ErrNonConvergent) for a broken rule set, ErrTooManyTiles when
// MaxTiles is exceeded, or the context's error on cancellation.
func Enumerate(ctx context.Context, reducer Reducer, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, o.err, "enumerate")
	}
	if reducer == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "enumerate: nil reducer")
	}

	start := time.Now()
	w := &walker{
		ctx:     ctx,
		reducer: reducer,
		opts:    o,
		seen:    NewSeen(o.Seen),
		edges:   make(map[[2]string]bool),
		res: &Result{
			Parent: make(map[string]string),
			Depth:  o.Depth,
		},
	}

	w.enqueue(reduce.Origin)
	if err := w.loop(); err != nil {
		return nil, err
	}
	if err := w.finish(); err != nil {
		return nil, err
	}

	o.Logger.Debug("enumerated tiles",
		"depth", o.Depth,
		"words", len(w.res.Words),
		"placed", len(w.res.Placed),
		"special", len(w.res.Special),
		"seen", o.Seen,
		"duration", time.Since(start))
	return w.res, nil
}

func (w *walker) enqueue(word string) {
	w.seen.Add(word)
	w.queue = append(w.queue, word)
}

func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		word := w.queue[0]
		w.queue = w.queue[1:]
		w.opts.OnVisit(word, len(w.res.Words))
		w.res.Words = append(w.res.Words, word)

		if reduce.Depth(word) >= w.opts.Depth {
			continue
		}
		if err := w.expand(word); err != nil {
			return err
		}
	}
	return nil
}

// expand queues the unseen canonical neighbours of word.
func (w *walker) expand(word string) error {
	for _, move := range w.opts.Moves {
		next, err := w.reducer.Reduce(word + move)
		if err != nil {
			return fmt.Errorf("expand %q by %q: %w", word, move, err)
		}
		w.addEdge(word, move, next)

		if w.seen.Contains(next) {
			continue
		}
		if w.opts.MaxTiles > 0 && w.seen.Len() >= w.opts.MaxTiles {
			return errors.Wrap(errors.ErrCodeInvalidInput, ErrTooManyTiles,
				"more than %d tiles at depth %d", w.opts.MaxTiles, w.opts.Depth)
		}
		w.res.Parent[next] = word
		w.enqueue(next)
	}
	return nil
}

func (w *walker) addEdge(from, move, to string) {
	if from == to {
		return
	}
	key := [2]string{from, to}
	if w.edges[key] {
		return
	}
	w.edges[key] = true
	w.res.Edges = append(w.res.Edges, Edge{From: from, Move: move, To: to})
}

// finish canonicalizes special tiles and applies exclusions.
func (w *walker) finish() error {
	taken := make(map[string]bool, len(w.opts.Special)+len(w.opts.Exclude))
	for _, st := range w.opts.Special {
		if err := reduce.Validate(st.Word); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "special tile %q", st.Kind)
		}
		canon, err := w.reducer.Reduce(st.Word)
		if err != nil {
			return fmt.Errorf("special tile %q: %w", st.Word, err)
		}
		w.res.Special = append(w.res.Special, SpecialTile{Word: canon, Kind: st.Kind})
		taken[canon] = true
	}
	for _, ex := range w.opts.Exclude {
		taken[ex] = true
	}

	w.res.Placed = make([]string, 0, len(w.res.Words))
	for _, word := range w.res.Words {
		if taken[word] {
			continue
		}
		w.res.Placed = append(w.res.Placed, word)
	}
	return nil
}
