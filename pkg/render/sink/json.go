package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	projection geom.Projection
	depth      int
	edges      []tiling.Edge
}

// WithJSONProjection adds each tile's center in the given projection.
func WithJSONProjection(proj geom.Projection) JSONOption {
	return func(r *jsonRenderer) { r.projection = proj }
}

// WithJSONDepth records the ring bound the tiles were enumerated with.
func WithJSONDepth(d int) JSONOption { return func(r *jsonRenderer) { r.depth = d } }

// WithJSONEdges includes the adjacency edges of the enumeration.
func WithJSONEdges(edges []tiling.Edge) JSONOption {
	return func(r *jsonRenderer) { r.edges = edges }
}

// Document is the JSON form of a placed tiling.
type Document struct {
	Profile    geom.Profile    `json:"profile"`
	Depth      int             `json:"depth,omitempty"`
	Projection geom.Projection `json:"projection,omitempty"`
	Tiles      []Record        `json:"tiles"`
	Edges      []tiling.Edge   `json:"edges,omitempty"`
}

// Record is one tile.
type Record struct {
	Word     string     `json:"word"`
	Display  string     `json:"display"`
	Kind     string     `json:"kind"`
	Ring     int        `json:"ring"`
	Index    int        `json:"index"`
	Position [3]float64 `json:"position"`
	Gyration [4]float64 `json:"gyration"` // w, x, y, z
	Center   []float64  `json:"center,omitempty"`
}

// NewRecord converts a placed tile. With a projection, Center holds the
// projected x and z of the tile's center.
func NewRecord(p geom.Profile, t tiling.Tile, proj geom.Projection) Record {
	g := t.Gyro.Gyration
	rec := Record{
		Word:     t.Word,
		Display:  reduce.Display(t.Word),
		Kind:     t.Kind,
		Ring:     t.Ring,
		Index:    t.Index,
		Position: t.Gyro.Position,
		Gyration: [4]float64{g.W, g.V[0], g.V[1], g.V[2]},
	}
	if proj != "" {
		c := p.Project(t.Gyro.Position, proj)
		rec.Center = []float64{c[0], c[2]}
	}
	return rec
}

// Tile converts a record back to a placement request.
func (r Record) Tile() tiling.Tile {
	return tiling.Tile{
		Word:  r.Word,
		Kind:  r.Kind,
		Ring:  r.Ring,
		Index: r.Index,
		Gyro: geom.GyroVector{
			Position: mgl64.Vec3(r.Position),
			Gyration: mgl64.Quat{W: r.Gyration[0], V: mgl64.Vec3{r.Gyration[1], r.Gyration[2], r.Gyration[3]}},
		},
	}
}

// RenderJSON exports placed tiles as a pretty-printed JSON document.
// It does not modify tiles and is safe to call concurrently.
func RenderJSON(p geom.Profile, tiles []tiling.Tile, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.projection != "" && !geom.ValidProjections[r.projection] {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "unknown projection %q", r.projection)
	}

	doc := Document{
		Profile:    p,
		Depth:      r.depth,
		Projection: r.projection,
		Tiles:      make([]Record, len(tiles)),
		Edges:      r.edges,
	}
	for i, t := range tiles {
		doc.Tiles[i] = NewRecord(p, t, r.projection)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON parses a document written by RenderJSON.
func DecodeJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tile document")
	}
	if doc.Profile.TilesPerVertex < geom.MinTilesPerVertex {
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "tile document has no valid profile")
	}
	return doc, nil
}

// TilingTiles returns the document's tiles as placement requests.
func (d Document) TilingTiles() []tiling.Tile {
	tiles := make([]tiling.Tile, len(d.Tiles))
	for i, r := range d.Tiles {
		tiles[i] = r.Tile()
	}
	return tiles
}

// NDJSON streams one Record per line. It is a tiling.Sink.
type NDJSON struct {
	profile geom.Profile
	proj    geom.Projection

	mu  sync.Mutex
	enc *json.Encoder
	n   int
}

// NewNDJSON returns a sink writing records for tiles of profile p to w.
// proj may be empty to leave out projected centers.
func NewNDJSON(w io.Writer, p geom.Profile, proj geom.Projection) *NDJSON {
	return &NDJSON{profile: p, proj: proj, enc: json.NewEncoder(w)}
}

// Place writes t.
func (s *NDJSON) Place(ctx context.Context, t tiling.Tile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := NewRecord(s.profile, t, s.proj)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write tile %q", t.Word)
	}
	s.n++
	return nil
}

// Count is the number of tiles written.
func (s *NDJSON) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
