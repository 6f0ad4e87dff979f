// Package sink writes placed tiles as JSON.
//
// [RenderJSON] produces one pretty-printed document holding the curvature
// profile, every tile with its motion and optional adjacency edges. The
// document is the interchange format of the pipeline: it is what gets cached
// and what the API returns, and [DecodeJSON] turns it back into tiles so
// other formats can be rendered without enumerating again.
//
// [NDJSON] is a [tiling.Sink] that streams one JSON object per tile as tiles
// are placed.
//
// [tiling.Sink]: github.com/matzehuels/hypertile/pkg/tiling.Sink
package sink
