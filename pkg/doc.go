// Package pkg provides the libraries behind hypertile, a toolkit for square
// tilings of the sphere, the flat plane and the hyperbolic plane.
//
// # Overview
//
// Every tile is named by a move word over u (step forward), d (step back),
// l and r (quarter turns). A rewrite rule set reduces each word to a
// canonical form, so two words name the same tile exactly when they reduce
// to the same string. The enumerator grows the tiling breadth first from the
// origin, and gyrovector arithmetic places each canonical word in the
// Poincaré or Klein disk.
//
// The typical data flow:
//
//	tiles per vertex
//	         ↓
//	    [geom] profile (curvature constants)
//	         ↓
//	    [reduce] canonical words ← rule set (TOML)
//	         ↓
//	    [tiling] breadth-first enumeration, placement requests
//	         ↓
//	    [render] disk, nodelink, JSON and NDJSON sinks
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
//	p, _ := geom.NewProfile(5)
//	res, _ := tiling.Enumerate(ctx, reduce.Default(), tiling.WithDepth(3))
//	tiles, _ := tiling.Tiles(ctx, p, res)
//	svg, _ := disk.RenderSVG(ctx, p, tiles)
//
// # Main Packages
//
// [geom] - Curvature profiles, Möbius addition and gyrovectors. Converts
// between tile-local, Poincaré and Klein coordinates.
//
// [reduce] - Substring rewrite rules with finishers. Loads rule sets from
// TOML and traces every rewrite for debugging.
//
// [tiling] - Breadth-first enumeration of canonical words with exclusions,
// special tiles and a discovery tree, plus the placement sink interface.
//
// [navigate] - A viewpoint that walks over the tiling, folding the holonomy
// of each move into its heading, and finds the nearest tile.
//
// [render] - Output formats and SVG conversion. [render/disk] draws the
// tiling in a disk model, [render/nodelink] draws the adjacency graph with
// Graphviz and [render/sink] writes JSON documents and NDJSON streams.
//
// ## Infrastructure
//
// [pipeline] - Enumerate → place → render with caching, used by the CLI and
// the HTTP server so both behave the same.
//
// [cache] - File, Redis, MongoDB and null backends behind one interface.
//
// [config] - The hypertile.toml project file.
//
// [server] - The HTTP API.
//
// [errors] - Error codes shared by the CLI and the API.
//
// [observability] - Hooks for pipeline, cache and request events, with a
// Prometheus implementation in observability/metrics.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/geom
// [reduce]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/reduce
// [tiling]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/tiling
// [navigate]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/navigate
// [render]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/render
// [render/disk]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/render/disk
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/render/nodelink
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/hypertile/pkg/observability
package pkg
